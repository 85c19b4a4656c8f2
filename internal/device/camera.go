package device

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"sentinel_cam/internal/models"
)

// Camera captures JPEG stills.
type Camera interface {
	Start(ctx context.Context) error
	Capture(ctx context.Context, quality models.Quality) ([]byte, error)
}

// StillCamera drives the libcamera still-capture tool and reads the JPEG
// from its stdout.
type StillCamera struct {
	command     string
	jpegQuality int
	timeout     time.Duration

	path string
}

// NewStillCamera returns the hardware camera.
func NewStillCamera(command string, jpegQuality int, timeout time.Duration) *StillCamera {
	return &StillCamera{command: command, jpegQuality: jpegQuality, timeout: timeout}
}

// Start resolves the capture tool. A missing tool wraps models.ErrCameraStart.
func (c *StillCamera) Start(_ context.Context) error {
	path, err := exec.LookPath(c.command)
	if err != nil {
		return fmt.Errorf("camera tool %q: %v: %w", c.command, err, models.ErrCameraStart)
	}
	c.path = path
	return nil
}

func (c *StillCamera) Capture(ctx context.Context, quality models.Quality) ([]byte, error) {
	if c.path == "" {
		return nil, fmt.Errorf("camera not started: %w", models.ErrCapture)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	w, h := quality.Resolution()
	cmd := exec.CommandContext(ctx, c.path,
		"--nopreview",
		"--immediate",
		"--width", strconv.Itoa(w),
		"--height", strconv.Itoa(h),
		"--quality", strconv.Itoa(c.jpegQuality),
		"--encoding", "jpg",
		"--output", "-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %v (%s): %w", c.command, err, bytes.TrimSpace(stderr.Bytes()), models.ErrCapture)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no image: %w", c.command, models.ErrCapture)
	}
	return stdout.Bytes(), nil
}

// simulatedScale shrinks simulated frames so development payloads stay small.
const simulatedScale = 16

// SimulatedCamera renders a synthetic gradient frame.
type SimulatedCamera struct {
	mu      sync.Mutex
	started bool
	frames  int

	// Fail makes every capture return an error.
	Fail bool
}

func NewSimulatedCamera() *SimulatedCamera { return &SimulatedCamera{} }

func (c *SimulatedCamera) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
	return nil
}

func (c *SimulatedCamera) Capture(_ context.Context, quality models.Quality) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || c.Fail {
		return nil, fmt.Errorf("simulated camera unavailable: %w", models.ErrCapture)
	}
	c.frames++
	w, h := quality.Resolution()
	w, h = w/simulatedScale, h/simulatedScale
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shift := uint8(c.frames * 17)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x*255/w) + shift, G: uint8(y * 255 / h), B: shift, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode simulated frame: %v: %w", err, models.ErrCapture)
	}
	return buf.Bytes(), nil
}
