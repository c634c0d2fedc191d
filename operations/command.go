package operations

import (
	"context"
	"fmt"

	"github.com/hackico-ai/hati-operation/result"
)

// Command is the collaborator invocation protocol. Step implementations, params transforms and
// overrides are all Commands. Input and output are untyped so collaborators of different types can
// share one registry; use AsCommand, CommandFunc or ResultFunc to adapt typed code.
type Command interface {
	Call(ctx context.Context, input any) result.Result[any]
}

// TypedCommand is a Command with concrete input and output types.
type TypedCommand[IN, OUT any] interface {
	Call(ctx context.Context, input IN) result.Result[OUT]
}

// CommandFunc adapts a plain (value, error) function into a Command.
// The returned value is implicitly wrapped as a Success.
type CommandFunc[IN, OUT any] func(ctx context.Context, input IN) (OUT, error)

// Call implements Command. An input that is not an IN is a ConfigurationError of the calling
// operation.
func (f CommandFunc[IN, OUT]) Call(ctx context.Context, input any) result.Result[any] {
	typed, err := castInput[IN](input)
	if err != nil {
		return raise(ctx, &ConfigurationError{Err: err})
	}

	out, err := f(ctx, typed)

	return result.Untyped(result.Of(out, err))
}

// ResultFunc adapts a function returning a Result into a Command.
type ResultFunc[IN, OUT any] func(ctx context.Context, input IN) result.Result[OUT]

// Call implements Command.
func (f ResultFunc[IN, OUT]) Call(ctx context.Context, input any) result.Result[any] {
	typed, err := castInput[IN](input)
	if err != nil {
		return raise(ctx, &ConfigurationError{Err: err})
	}

	return result.Untyped(f(ctx, typed))
}

// AsCommand converts a TypedCommand to a Command.
// Warning: the input type is checked at call time, so type safety is lost.
func AsCommand[IN, OUT any](c TypedCommand[IN, OUT]) Command {
	return ResultFunc[IN, OUT](c.Call)
}

// raise reports a programmer error detected while a command runs. Inside a call the error is
// recorded on the call's Scope, which halts the call and makes Call return it as its error, so no
// step error override or hook can replace it. Outside a call there is no channel for it and raise
// panics with the error.
func raise(ctx context.Context, err *ConfigurationError) result.Result[any] {
	s, ok := scopeFromContext(ctx)
	if !ok {
		panic(err)
	}

	return result.Failure[any](s.fail(err))
}

// castInput converts an untyped input to IN. A nil input converts to the zero value.
func castInput[IN any](input any) (IN, error) {
	var typed IN
	if input == nil {
		return typed, nil
	}

	typed, ok := input.(IN)
	if !ok {
		return typed, fmt.Errorf("%w: input is %T, want %T", ErrTypeMismatch, input, typed)
	}

	return typed, nil
}
