// Package result provides the two-variant outcome type used by the operations engine.
//
// A Result is either a Success carrying a value or a Failure carrying an error payload.
// It is a thin layer over mo.Result that guarantees a Failure always has a payload and adds the
// conversions the engine needs between typed and untyped results.
// Results are immutable values; the zero Result is a Success holding the zero value of T.
package result

import (
	"errors"
	"fmt"

	"github.com/samber/mo"
)

// ErrUnspecifiedFailure is the payload of a Failure constructed with a nil error.
var ErrUnspecifiedFailure = errors.New("unspecified failure")

// ErrTypeMismatch is returned by As when the success value is not of the requested type.
var ErrTypeMismatch = errors.New("result value type mismatch")

// Result is the outcome of a command or operation.
type Result[T any] struct {
	r mo.Result[T]
}

// Success returns a successful Result holding value.
func Success[T any](value T) Result[T] {
	return Result[T]{r: mo.Ok(value)}
}

// Failure returns a failed Result carrying err.
// A nil err is replaced with ErrUnspecifiedFailure so a Failure always has a payload.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrUnspecifiedFailure
	}

	return Result[T]{r: mo.Err[T](err)}
}

// Of builds a Result from the conventional (value, error) pair.
func Of[T any](value T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}

	return Success(value)
}

// FromMo converts a mo.Result. An error variant without an error becomes a Failure carrying
// ErrUnspecifiedFailure.
func FromMo[T any](r mo.Result[T]) Result[T] {
	if r.IsError() {
		return Failure[T](r.Error())
	}

	return Result[T]{r: r}
}

// Mo returns the underlying mo.Result.
func (r Result[T]) Mo() mo.Result[T] {
	return r.r
}

// IsSuccess reports whether the Result is a Success.
func (r Result[T]) IsSuccess() bool {
	return r.r.IsOk()
}

// IsFailure reports whether the Result is a Failure.
func (r Result[T]) IsFailure() bool {
	return r.r.IsError()
}

// Value returns the success value, or the zero value of T for a Failure.
func (r Result[T]) Value() T {
	return r.r.OrEmpty()
}

// Err returns the failure payload, or nil for a Success.
func (r Result[T]) Err() error {
	return r.r.Error()
}

// Unwrap returns the Result as a (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.r.Get()
}

// WithErr replaces the payload of a Failure. A Success, or a nil err, leaves the Result unchanged.
func (r Result[T]) WithErr(err error) Result[T] {
	if r.IsSuccess() || err == nil {
		return r
	}

	return Failure[T](err)
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.IsFailure() {
		return fmt.Sprintf("Failure(%v)", r.Err())
	}

	return fmt.Sprintf("Success(%v)", r.Value())
}

// Untyped converts r to a Result[any], keeping its variant and payload.
func Untyped[T any](r Result[T]) Result[any] {
	if r.IsFailure() {
		return Failure[any](r.Err())
	}

	return Success[any](r.Value())
}

// As converts an untyped Result back to Result[T].
// A Failure keeps its payload. A Success whose value is not a T becomes a Failure wrapping
// ErrTypeMismatch; a nil value converts to the zero value of T.
func As[T any](r Result[any]) Result[T] {
	if r.IsFailure() {
		return Failure[T](r.Err())
	}

	value := r.Value()
	if value == nil {
		var zero T
		return Success(zero)
	}

	v, ok := value.(T)
	if !ok {
		var zero T
		return Failure[T](fmt.Errorf("%w: got %T, want %T", ErrTypeMismatch, value, zero))
	}

	return Success(v)
}
