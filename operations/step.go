package operations

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hackico-ai/hati-operation/result"
)

// Unwrap consumes the outcome of a collaborator.
//
// On Success the most recent pending frame is marked done and the value is returned.
// On Failure the call is halted: the payload is the error override of the pending frame when the
// step was declared with one, else the Failure's own error. The returned error must be returned
// from the body; every later unwrap in the same call returns it again without running anything.
func Unwrap[T any](s *Scope, r result.Result[T]) (T, error) {
	var zero T
	if s.halted {
		return zero, s.failure
	}

	if r.IsFailure() {
		payload := r.Err()
		if override := s.frames.pendingErr(); override != nil {
			payload = override
		}

		return zero, s.halt(payload)
	}

	s.frames.markDone()

	return r.Value(), nil
}

// Value consumes a plain value. A nil value halts the call with errOverride when one is given;
// otherwise the pending frame is marked done and v is returned unchanged.
func Value[T any](s *Scope, v T, errOverride error) (T, error) {
	var zero T
	if s.halted {
		return zero, s.failure
	}

	if errOverride != nil && isNil(v) {
		return zero, s.halt(errOverride)
	}

	s.frames.markDone()

	return v, nil
}

// Try runs fn and consumes its outcome. A returned error or a panic halts the call with
// errOverride when one is given, else with the error itself.
func Try[T any](s *Scope, fn func(ctx context.Context) (T, error), errOverride error) (T, error) {
	var zero T
	if s.halted {
		return zero, s.failure
	}

	v, err := protect(s, fn)
	if err != nil {
		if errOverride != nil {
			err = errOverride
		}

		return zero, s.halt(err)
	}

	return v, nil
}

// Step reads the accessor of the step name, calls the resolved implementation with input and
// unwraps the outcome as OUT. A step that is not declared or a panicking implementation halts the
// call with a failure. A value that is not an OUT halts it with a ConfigurationError.
func Step[OUT any](s *Scope, name string, input any) (OUT, error) {
	var zero OUT
	if s.halted {
		return zero, s.failure
	}

	impl := s.Command(name)
	if impl == nil {
		return zero, s.halt(fmt.Errorf("%w: %s", ErrUnknownStep, name))
	}

	v, err := Unwrap(s, invoke(s.ctx, s.registry, impl, input))
	if err != nil {
		return zero, err
	}

	if v == nil {
		return zero, nil
	}

	out, ok := v.(OUT)
	if !ok {
		return zero, s.fail(&ConfigurationError{
			Err: fmt.Errorf("%w: step %s returned %T, want %T", ErrTypeMismatch, name, v, zero),
		})
	}

	return out, nil
}

// invoke calls impl, turning a panic into a Failure. A panicking ConfigurationError is raised
// on the call instead.
func invoke(ctx context.Context, r *Registry, impl Command, input any) (res result.Result[any]) {
	defer func() {
		if v := recover(); v != nil {
			if cfgErr, ok := v.(*ConfigurationError); ok {
				res = raise(ctx, cfgErr)
				return
			}
			res = result.Failure[any](r.recovered(v))
		}
	}()

	return impl.Call(ctx, input)
}

func protect[T any](s *Scope, fn func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if cfgErr, ok := r.(*ConfigurationError); ok {
				err = s.fail(cfgErr)
				return
			}
			err = s.registry.recovered(r)
		}
	}()

	return fn(s.ctx)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
