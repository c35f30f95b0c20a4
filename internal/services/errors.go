package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("invalid username or password")
	ErrConflict     = errors.New("conflict")

	// ErrDeviceBoundElsewhere is returned when a hardware id is already
	// registered under a different license. Devices are never rebound.
	ErrDeviceBoundElsewhere = errors.New("device is registered to another license")
)

// DeviceLimitError reports that a license has no free device slot.
type DeviceLimitError struct {
	Current int
	Max     int
}

func (e *DeviceLimitError) Error() string {
	return fmt.Sprintf("maximum device limit reached (%d of %d devices)", e.Current, e.Max)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}
