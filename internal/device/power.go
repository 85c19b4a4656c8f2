package device

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"sentinel_cam/internal/models"
)

// WakeSpec tells the power controller when to boot the board again: at an
// absolute device-local time, or after a delay from the moment of scheduling.
type WakeSpec struct {
	At    time.Time
	After time.Duration
}

// WakeAt builds an absolute wake spec.
func WakeAt(t time.Time) WakeSpec { return WakeSpec{At: t} }

// WakeAfter builds a relative wake spec.
func WakeAfter(d time.Duration) WakeSpec { return WakeSpec{After: d} }

// Absolute reports whether the spec names a wall-clock time.
func (w WakeSpec) Absolute() bool { return !w.At.IsZero() }

// Resolve returns the wake instant for a spec scheduled at now.
func (w WakeSpec) Resolve(now time.Time) time.Time {
	if w.Absolute() {
		return w.At
	}
	return now.Add(w.After)
}

func (w WakeSpec) String() string {
	if w.Absolute() {
		return "at " + w.At.Format(time.RFC3339)
	}
	return "after " + w.After.String()
}

// PowerControl arms the next wake-up and powers the board down.
type PowerControl interface {
	ScheduleWakeup(ctx context.Context, spec WakeSpec) error
}

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, out)
	}
	return nil
}

// RTCWakePower programs the RTC wake alarm through sysfs and then runs the
// shutdown command.
type RTCWakePower struct {
	clock     Clock
	alarmPath string
	shutdown  []string
	run       CommandRunner
}

// NewRTCWakePower returns the hardware power controller.
func NewRTCWakePower(clock Clock, alarmPath string, shutdown []string) *RTCWakePower {
	return &RTCWakePower{clock: clock, alarmPath: alarmPath, shutdown: shutdown, run: runCommand}
}

// ScheduleWakeup wraps every failure in models.ErrPowerControl: the board
// must not go down without a future wake time armed.
func (p *RTCWakePower) ScheduleWakeup(ctx context.Context, spec WakeSpec) error {
	now := p.clock.Now()
	wake := spec.Resolve(now)
	if !wake.After(now) {
		return fmt.Errorf("wake time %s is not in the future: %w", wake.Format(time.RFC3339), models.ErrPowerControl)
	}
	// the kernel refuses a new alarm while one is pending
	if err := os.WriteFile(p.alarmPath, []byte("0"), 0o644); err != nil {
		return fmt.Errorf("clear wake alarm: %v: %w", err, models.ErrPowerControl)
	}
	epoch := strconv.FormatInt(wake.Unix(), 10)
	if err := os.WriteFile(p.alarmPath, []byte(epoch), 0o644); err != nil {
		return fmt.Errorf("arm wake alarm at %s: %v: %w", wake.Format(time.RFC3339), err, models.ErrPowerControl)
	}
	if len(p.shutdown) == 0 {
		return fmt.Errorf("no shutdown command configured: %w", models.ErrPowerControl)
	}
	if err := p.run(ctx, p.shutdown[0], p.shutdown[1:]...); err != nil {
		return fmt.Errorf("shutdown: %v: %w", err, models.ErrPowerControl)
	}
	return nil
}

// SimulatedPower records the requested wake time instead of powering off.
type SimulatedPower struct {
	clock Clock

	mu   sync.Mutex
	wake time.Time
	set  bool
}

// NewSimulatedPower returns a power controller for development runs.
func NewSimulatedPower(clock Clock) *SimulatedPower {
	return &SimulatedPower{clock: clock}
}

func (p *SimulatedPower) ScheduleWakeup(_ context.Context, spec WakeSpec) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wake = spec.Resolve(p.clock.Now())
	p.set = true
	return nil
}

// WakeTime returns the last armed wake instant.
func (p *SimulatedPower) WakeTime() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wake, p.set
}

// WaitForWake blocks until the armed wake time, emulating the board being
// off. It returns immediately when nothing is armed.
func (p *SimulatedPower) WaitForWake(ctx context.Context) error {
	wake, ok := p.WakeTime()
	if !ok {
		return nil
	}
	d := wake.Sub(p.clock.Now())
	if d <= 0 {
		return nil
	}
	fired, stop := p.clock.Timer(d)
	defer stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-fired:
		return nil
	}
}
