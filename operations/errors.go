package operations

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParams is reported when a params transform is configured but the caller
	// did not pass WithParams.
	ErrMissingParams = errors.New("params argument is required when a params transform is configured")

	// ErrInvalidStep is reported when a step is declared without a name or implementation.
	ErrInvalidStep = errors.New("invalid step: expected a named Command")

	// ErrUnknownStep is the failure payload of a step that has no binding and no override.
	ErrUnknownStep = errors.New("step is not defined")

	// ErrTypeMismatch is reported when a value cannot be converted to the type expected by
	// an operation or command.
	ErrTypeMismatch = errors.New("type mismatch")
)

// ConfigurationError is a programmer error: an invalid definition or a call that does not
// satisfy the operation's contract. It is returned as a Go error and never wrapped in a Result.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Op == "" {
		return "configuration error: " + e.Err.Error()
	}

	return fmt.Sprintf("operation %s: configuration error: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// PanicError carries the value recovered from a panic raised inside an operation body or step.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the recovered value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
