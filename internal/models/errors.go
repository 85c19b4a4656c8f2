package models

import (
	"errors"
	"fmt"
)

// Error kinds. Wrap them with fmt.Errorf("...: %w", Err...) so the top-level
// driver can classify with errors.Is.
var (
	ErrConfigValidation = errors.New("config validation failed")
	ErrSyncTimeout      = errors.New("config sync timed out")
	ErrSyncRejected     = errors.New("config sync rejected")
	ErrCapture          = errors.New("image capture failed")
	ErrCameraStart      = errors.New("camera start failed")
	ErrConnectivity     = errors.New("transport unreachable")
	ErrPowerControl     = errors.New("wake scheduling failed")
)

// ValidationError describes why a schedule document was refused.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Unwrap lets errors.Is match ErrConfigValidation.
func (e *ValidationError) Unwrap() error { return ErrConfigValidation }

// Invalidf builds a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err must terminate the process.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConnectivity) ||
		errors.Is(err, ErrPowerControl) ||
		errors.Is(err, ErrCameraStart)
}
