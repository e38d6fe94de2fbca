// Package errs holds the error vocabulary shared by the volmeasure packages.
//
// Construction failures are returned as errors wrapping one of the sentinels
// below. Hot-path lookups (world to index, plane projection) never return
// errors; they report a miss with an ok flag instead.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a rejected constructor argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyInitialised is returned when an annotation is bound twice.
	ErrAlreadyInitialised = errors.New("already initialised")
	// ErrNotInitialised is returned when an operation needs a bound reference frame.
	ErrNotInitialised = errors.New("not initialised")
	// ErrInvalidCommand is the panic value of an invalid command execution.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrNoFactory is returned when no draw factory supports a shape kind.
	ErrNoFactory = errors.New("no draw factory")
	// ErrSessionActive is returned when a drag starts on an annotation already being dragged.
	ErrSessionActive = errors.New("drag session already active")
	// ErrSessionClosed is returned when a finished drag session is reused.
	ErrSessionClosed = errors.New("drag session closed")
	// ErrUnknownAnchor is returned for an anchor id the shape does not expose.
	ErrUnknownAnchor = errors.New("unknown anchor")
	// ErrNotFound is returned when a looked up item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfig marks a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrParsingFailed marks structured data that could not be mapped.
	ErrParsingFailed = errors.New("parsing failed")
)

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// Invalid returns an ErrInvalidInput error with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsInvalid reports whether err stems from rejected input or configuration.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrParsingFailed)
}
