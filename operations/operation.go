package operations

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/hackico-ai/hati-operation/pkg/logger"
	"github.com/hackico-ai/hati-operation/result"
)

// Bundle contains the dependencies shared by every call: the Logger, the context and the Reporter.
// Use NewBundle to create a new Bundle.
type Bundle struct {
	Logger     logger.Logger
	GetContext func() context.Context
	reporter   Reporter
}

// NewBundle creates and returns a new Bundle. A nil reporter disables call reports.
func NewBundle(getContext func() context.Context, lggr logger.Logger, reporter Reporter) Bundle {
	return Bundle{
		Logger:     lggr,
		GetContext: getContext,
		reporter:   reporter,
	}
}

// Reporter returns the reporter calls are recorded to, or nil.
func (b Bundle) Reporter() Reporter {
	return b.reporter
}

func (b Bundle) context() context.Context {
	if b.GetContext == nil {
		return context.Background()
	}
	if ctx := b.GetContext(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func (b Bundle) logger() logger.Logger {
	if b.Logger == nil {
		return logger.Nop()
	}

	return b.Logger
}

type bundleKey struct{}

// ContextWithBundle returns a copy of ctx carrying b. Operations used as steps of another
// operation pick up the parent's bundle from the context.
func ContextWithBundle(ctx context.Context, b Bundle) context.Context {
	return context.WithValue(ctx, bundleKey{}, b)
}

// BundleFromContext returns the bundle stored by ContextWithBundle.
func BundleFromContext(ctx context.Context) (Bundle, bool) {
	b, ok := ctx.Value(bundleKey{}).(Bundle)
	return b, ok
}

// Handler is the body of an operation. It receives the call Scope, through which steps are
// resolved and unwrapped, the positional args and the (possibly transformed) params.
type Handler[A, P, OUT any] func(s *Scope, args A, params P) (OUT, error)

// Definition is the metadata of an operation: its ID, version and description.
type Definition struct {
	ID          string          `json:"id" yaml:"id"`
	Version     *semver.Version `json:"version" yaml:"-"`
	Description string          `json:"description" yaml:"description"`
}

// Operation composes named steps, an optional params transform and optional hooks into one
// callable unit. Use NewOperation to create a new operation.
type Operation[A, P, OUT any] struct {
	def      Definition
	handler  Handler[A, P, OUT]
	registry *Registry
}

// Option registers definition-time configuration into an operation's Registry.
type Option func(*Registry) error

// BindingOption configures a step binding or a params transform.
type BindingOption func(*bindingConfig)

type bindingConfig struct {
	err error
}

func newBindingConfig(opts []BindingOption) bindingConfig {
	var cfg bindingConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithError sets the error that replaces the payload when the step or params transform fails.
func WithError(err error) BindingOption {
	return func(c *bindingConfig) {
		c.err = err
	}
}

// WithStep declares the step name with its default implementation.
// Declaring the same name again overwrites the previous binding.
func WithStep(name string, impl Command, opts ...BindingOption) Option {
	return func(r *Registry) error {
		return r.RegisterStep(name, impl, newBindingConfig(opts).err)
	}
}

// WithParamsTransform declares the params transform. Only the last declaration is kept.
func WithParamsTransform(transform Command, opts ...BindingOption) Option {
	return func(r *Registry) error {
		r.RegisterParams(transform, newBindingConfig(opts).err)
		return nil
	}
}

// WithSuccessHook declares the hook applied to successful results.
func WithSuccessHook(hook Hook) Option {
	return func(r *Registry) error {
		r.RegisterHook(SuccessHook, hook)
		return nil
	}
}

// WithFailureHook declares the hook applied to failed results.
func WithFailureHook(hook Hook) Option {
	return func(r *Registry) error {
		r.RegisterHook(FailureHook, hook)
		return nil
	}
}

// WithUnexpectedError sets the payload reported when a panic is recovered during a call.
func WithUnexpectedError(err error) Option {
	return func(r *Registry) error {
		r.RegisterUnexpectedError(err)
		return nil
	}
}

// NewOperation creates a new operation and applies the definition options in order.
// Version can be created using semver.MustParse("1.0.0") or semver.New("1.0.0").
func NewOperation[A, P, OUT any](
	id string, version *semver.Version, description string, handler Handler[A, P, OUT], opts ...Option,
) (*Operation[A, P, OUT], error) {
	if id == "" {
		return nil, &ConfigurationError{Err: errors.New("operation id is required")}
	}
	if handler == nil {
		return nil, &ConfigurationError{Op: id, Err: errors.New("operation handler is required")}
	}

	op := &Operation[A, P, OUT]{
		def: Definition{
			ID:          id,
			Version:     version,
			Description: description,
		},
		handler:  handler,
		registry: NewRegistry(),
	}

	if err := op.Define(opts...); err != nil {
		return nil, err
	}

	return op, nil
}

// MustNewOperation is like NewOperation but panics on a ConfigurationError.
// It is meant for package level operation declarations.
func MustNewOperation[A, P, OUT any](
	id string, version *semver.Version, description string, handler Handler[A, P, OUT], opts ...Option,
) *Operation[A, P, OUT] {
	op, err := NewOperation(id, version, description, handler, opts...)
	if err != nil {
		panic(err)
	}

	return op
}

// Define applies further definition-time options. It must not be called once the operation is
// being called concurrently.
func (o *Operation[A, P, OUT]) Define(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o.registry); err != nil {
			var cfgErr *ConfigurationError
			if errors.As(err, &cfgErr) && cfgErr.Op == "" {
				cfgErr.Op = o.def.ID
			}

			return err
		}
	}

	return nil
}

// ID returns the operation ID.
func (o *Operation[A, P, OUT]) ID() string {
	return o.def.ID
}

// Version returns the operation semver version in string, or an empty string when unset.
func (o *Operation[A, P, OUT]) Version() string {
	if o.def.Version == nil {
		return ""
	}

	return o.def.Version.String()
}

// Description returns the operation description.
func (o *Operation[A, P, OUT]) Description() string {
	return o.def.Description
}

// Def returns the operation definition.
func (o *Operation[A, P, OUT]) Def() Definition {
	return o.def
}

// Registry returns the definition-time configuration of the operation.
func (o *Operation[A, P, OUT]) Registry() *Registry {
	return o.registry
}

// AsCommand exposes the operation as a Command taking A as input, so it can be used as a step
// of another operation. The nested call uses the bundle found in the context, which makes its
// report a child of the calling operation's report. A ConfigurationError returned by the nested
// call is raised on the calling operation, whose Call then returns it.
func (o *Operation[A, P, OUT]) AsCommand(opts ...CallOption) Command {
	return ResultFunc[A, OUT](func(ctx context.Context, args A) result.Result[OUT] {
		b, ok := BundleFromContext(ctx)
		if !ok {
			b = NewBundle(nil, logger.Nop(), nil)
		}
		b.GetContext = func() context.Context { return ctx }

		res, err := o.Call(b, args, opts...)
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return result.As[OUT](raise(ctx, cfgErr))
		}
		if err != nil {
			return result.Failure[OUT](err)
		}

		return res
	})
}

// Run is the untyped entry point used by the Catalog. args must be assignable to A.
func (o *Operation[A, P, OUT]) Run(b Bundle, args any, opts ...CallOption) (result.Result[any], error) {
	typed, err := castInput[A](args)
	if err != nil {
		return result.Result[any]{}, &ConfigurationError{Op: o.def.ID, Err: fmt.Errorf("args: %w", err)}
	}

	res, err := o.Call(b, typed, opts...)

	return result.Untyped(res), err
}

// EmptyInput is a placeholder for operations that do not take args or params.
type EmptyInput struct{}
