package operations

import (
	"context"
	"fmt"

	"github.com/hackico-ai/hati-operation/result"
)

// CallOption configures a single call of an operation.
type CallOption func(*callConfig)

type callConfig struct {
	params    any
	hasParams bool
	configure func(*Overrides)
}

// WithParams passes the raw params of the call. When the operation declares a params transform
// the raw params are transformed first; otherwise they must be assignable to the params type.
func WithParams(params any) CallOption {
	return func(c *callConfig) {
		c.params = params
		c.hasParams = true
	}
}

// WithOverrides supplies call-scoped substitutions. configure is evaluated against a fresh
// Overrides; the substitutions apply to this call only.
func WithOverrides(configure func(o *Overrides)) CallOption {
	return func(c *callConfig) {
		c.configure = configure
	}
}

// Call executes the operation.
//
// The call transforms the params when a transform is configured, runs the body with a fresh
// Scope, normalizes the outcome into a Result and passes it to the matching hook. A failing params
// transform short-circuits before the body and skips the hooks.
//
// Domain failures and recovered panics are returned as a Failure. The returned error is reserved
// for programmer errors and reporting errors. A ConfigurationError, such as ErrMissingParams or a
// command given an input of the wrong type, is returned even when it was raised by a nested
// operation, and the call is then not reported.
//
// A report of the call is added to the bundle's reporter when it has one.
func (o *Operation[A, P, OUT]) Call(b Bundle, args A, opts ...CallOption) (result.Result[OUT], error) {
	cfg := &callConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	lggr := b.logger()
	ctx := b.context()

	lggr.Infow("Executing operation",
		"id", o.def.ID, "version", o.Version(), "description", o.def.Description)

	overrides := collectOverrides(cfg.configure)

	// Nested operations report to a recent reporter so their reports become children of this one.
	child := b
	var recent *RecentReporter
	if b.reporter != nil {
		recent = NewRecentMemoryReporter(baseReporter(b.reporter))
		child.reporter = recent
	}

	s := newScope(ContextWithBundle(ctx, child), lggr, o.def, o.registry, overrides)

	params, rejected, err := o.transformParams(s, cfg)
	if err != nil {
		lggr.Errorw("Operation call is misconfigured", "id", o.def.ID, "error", err)
		return result.Result[OUT]{}, err
	}
	if rejected.IsFailure() {
		lggr.Debugw("Params transform failed", "id", o.def.ID, "error", rejected.Err())
		return o.finish(b, args, rejected, nil, nil)
	}

	out, bodyErr := o.execute(s, args, params)
	if cfgErr := s.ConfigErr(); cfgErr != nil {
		lggr.Errorw("Operation call is misconfigured", "id", o.def.ID, "error", cfgErr)
		return result.Result[OUT]{}, cfgErr
	}

	final := o.dispatchHooks(s.ctx, normalize(s, out, bodyErr))

	var childIDs []string
	if recent != nil {
		for _, rep := range recent.GetRecentReports() {
			childIDs = append(childIDs, rep.ID)
		}
	}

	return o.finish(b, args, final, s.Frames(), childIDs)
}

// baseReporter strips the RecentReporter a parent call wrapped around the bundle's reporter, so a
// call only collects the reports of the operations it calls directly.
func baseReporter(r Reporter) Reporter {
	for {
		recent, ok := r.(*RecentReporter)
		if !ok {
			return r
		}
		r = recent.Reporter
	}
}

// transformParams resolves the effective params transform and applies it. rejected is a Failure
// when the transform failed, carrying the effective params error override when one is set.
func (o *Operation[A, P, OUT]) transformParams(
	s *Scope, cfg *callConfig,
) (params P, rejected result.Result[any], err error) {
	raw := cfg.params

	transform, errOverride := o.registry.resolveParams(s.overrides)
	if transform != nil {
		if !cfg.hasParams {
			return params, rejected, &ConfigurationError{Op: o.def.ID, Err: ErrMissingParams}
		}

		res := invoke(s.ctx, o.registry, transform, raw)
		if cfgErr := s.ConfigErr(); cfgErr != nil {
			return params, rejected, cfgErr
		}
		if res.IsFailure() {
			return params, res.WithErr(errOverride), nil
		}
		raw = res.Value()
	}

	params, err = castInput[P](raw)
	if err != nil {
		return params, rejected, &ConfigurationError{Op: o.def.ID, Err: fmt.Errorf("params: %w", err)}
	}

	return params, rejected, nil
}

// execute runs the body, turning a panic into a halt of the scope.
func (o *Operation[A, P, OUT]) execute(s *Scope, args A, params P) (out OUT, err error) {
	defer func() {
		if v := recover(); v != nil {
			if cfgErr, ok := v.(*ConfigurationError); ok {
				err = s.fail(cfgErr)
				return
			}
			s.lggr.Warnw("Recovered panic in operation", "id", o.def.ID, "panic", v)
			err = s.halt(o.registry.recovered(v))
		}
	}()

	return o.handler(s, args, params)
}

// normalize turns the body outcome into a Result. A halted scope always wins over whatever the
// body returned.
func normalize[OUT any](s *Scope, out OUT, err error) result.Result[any] {
	if s.halted {
		return result.Failure[any](s.failure)
	}
	if err != nil {
		return result.Failure[any](err)
	}

	return result.Success[any](out)
}

func (o *Operation[A, P, OUT]) dispatchHooks(ctx context.Context, r result.Result[any]) result.Result[any] {
	kind := SuccessHook
	if r.IsFailure() {
		kind = FailureHook
	}

	if hook := o.registry.Hook(kind); hook != nil {
		return hook(ctx, r)
	}

	return r
}

// finish converts the final result to OUT and records the call report.
func (o *Operation[A, P, OUT]) finish(
	b Bundle, args A, final result.Result[any], frames []Frame, childIDs []string,
) (result.Result[OUT], error) {
	typed := result.As[OUT](final)

	if b.reporter == nil {
		return typed, nil
	}

	report := NewReport(o.def, args, typed.Value(), typed.Err(), childIDs...)
	report.Steps = newStepReports(frames)
	if err := b.reporter.AddReport(genericReport(report)); err != nil {
		b.logger().Errorw("Failed to add operation report", "id", o.def.ID, "error", err)
		return typed, err
	}

	return typed, nil
}
