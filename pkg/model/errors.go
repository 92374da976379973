package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that the requested entity does not exist in an
	// otherwise valid session (e.g. a driver without a timed lap)
	ErrNotFound = errors.New("not found")
	// ErrTelemetryUnavailable is returned by sessions which have no telemetry for a lap
	ErrTelemetryUnavailable = errors.New("telemetry unavailable")
)

// ValidationError is caused by invalid input and is reported to the client as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// LoadError is returned when the external session could not be retrieved or parsed.
type LoadError struct {
	Key SessionKey
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load session %s: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsLoadError(err error) bool {
	var target *LoadError
	return errors.As(err, &target)
}
