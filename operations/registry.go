package operations

import (
	"context"
	"fmt"
	"slices"

	"github.com/hackico-ai/hati-operation/result"
)

// StepBinding binds a step name to its default implementation.
// Err, when set, replaces the payload of a failure unwrapped from this step.
type StepBinding struct {
	Name    string
	Command Command
	Err     error
}

// ParamsTransform validates or reshapes the caller supplied params before the body runs.
type ParamsTransform struct {
	Command Command
	Err     error
}

// HookKind selects which final result a Hook post-processes.
type HookKind int

const (
	SuccessHook HookKind = iota
	FailureHook
)

func (k HookKind) String() string {
	switch k {
	case SuccessHook:
		return "on_success"
	case FailureHook:
		return "on_failure"
	default:
		return fmt.Sprintf("HookKind(%d)", int(k))
	}
}

// Hook post-processes the normalized result of a call. Its return value becomes the final result.
type Hook func(ctx context.Context, r result.Result[any]) result.Result[any]

// Registry is the definition-time configuration of one operation: step bindings, the params
// transform and the hooks. It is populated while the operation is defined and only read by calls.
// Registering after calls have started is unsupported and not synchronized.
type Registry struct {
	steps         map[string]StepBinding
	params        *ParamsTransform
	hooks         map[HookKind]Hook
	unexpectedErr error
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]StepBinding),
		hooks: make(map[HookKind]Hook),
	}
}

// RegisterStep binds name to impl, overwriting any previous binding of the same name.
// It returns a ConfigurationError when name is empty or impl is nil.
func (r *Registry) RegisterStep(name string, impl Command, errOverride error) error {
	if name == "" {
		return &ConfigurationError{Err: fmt.Errorf("%w: empty step name", ErrInvalidStep)}
	}
	if impl == nil {
		return &ConfigurationError{Err: fmt.Errorf("%w: step %q has no implementation", ErrInvalidStep, name)}
	}

	r.steps[name] = StepBinding{Name: name, Command: impl, Err: errOverride}

	return nil
}

// RegisterParams sets the params transform. A nil transform removes it.
func (r *Registry) RegisterParams(transform Command, errOverride error) {
	if transform == nil {
		r.params = nil
		return
	}

	r.params = &ParamsTransform{Command: transform, Err: errOverride}
}

// RegisterHook sets the hook of the given kind. A nil hook removes it.
func (r *Registry) RegisterHook(kind HookKind, hook Hook) {
	if hook == nil {
		delete(r.hooks, kind)
		return
	}

	r.hooks[kind] = hook
}

// RegisterUnexpectedError sets the payload reported for panics recovered during a call.
// When unset the recovered panic itself, as a *PanicError, is the payload.
func (r *Registry) RegisterUnexpectedError(err error) {
	r.unexpectedErr = err
}

// Step returns the binding registered under name.
func (r *Registry) Step(name string) (StepBinding, bool) {
	b, ok := r.steps[name]
	return b, ok
}

// Steps returns the registered step names in lexical order.
func (r *Registry) Steps() []string {
	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Params returns the registered params transform.
func (r *Registry) Params() (ParamsTransform, bool) {
	if r.params == nil {
		return ParamsTransform{}, false
	}

	return *r.params, true
}

// Hook returns the hook of the given kind, or nil.
func (r *Registry) Hook(kind HookKind) Hook {
	return r.hooks[kind]
}

// Hooks returns the kinds that have a hook registered.
func (r *Registry) Hooks() []HookKind {
	kinds := make([]HookKind, 0, len(r.hooks))
	for kind := range r.hooks {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)

	return kinds
}

// Resolve returns the implementation a call should use for name: the override when overrides
// holds one, else the registered binding, else nil.
func (r *Registry) Resolve(name string, overrides *OverrideSet) Command {
	if overrides != nil {
		if impl, ok := overrides.Steps[name]; ok && impl != nil {
			return impl
		}
	}

	if b, ok := r.steps[name]; ok {
		return b.Command
	}

	return nil
}

// resolveParams returns the effective params transform and its error override. Override set
// values win over the registry; a nil override set means registry-only resolution.
func (r *Registry) resolveParams(overrides *OverrideSet) (Command, error) {
	var (
		transform Command
		errOver   error
	)

	if r.params != nil {
		transform, errOver = r.params.Command, r.params.Err
	}

	if overrides != nil {
		if overrides.Params != nil {
			transform = overrides.Params
		}
		if overrides.ParamsErr != nil {
			errOver = overrides.ParamsErr
		}
	}

	return transform, errOver
}

// recovered converts a value recovered from a panic into a failure payload.
func (r *Registry) recovered(v any) error {
	if r.unexpectedErr != nil {
		return r.unexpectedErr
	}

	return &PanicError{Value: v}
}

// stepErr returns the error override bound to name, if any.
func (r *Registry) stepErr(name string) error {
	return r.steps[name].Err
}
