package operations

import (
	"context"
	"sync"

	"github.com/hackico-ai/hati-operation/pkg/logger"
)

// Scope is the per-call receiver handed to an operation body. It resolves step implementations
// through the call's overrides and the operation registry, records the execution frames and
// remembers the first failure so the rest of the body is short-circuited.
//
// A Scope is owned by exactly one call and must not be retained or shared.
type Scope struct {
	ctx       context.Context
	lggr      logger.Logger
	def       Definition
	registry  *Registry
	overrides *OverrideSet
	frames    frameStack

	halted  bool
	failure error

	mu     sync.Mutex
	cfgErr *ConfigurationError
}

type scopeKey struct{}

func newScope(ctx context.Context, lggr logger.Logger, def Definition, registry *Registry, overrides *OverrideSet) *Scope {
	s := &Scope{
		lggr:      lggr,
		def:       def,
		registry:  registry,
		overrides: overrides,
	}
	s.ctx = context.WithValue(ctx, scopeKey{}, s)

	return s
}

func scopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok
}

// Context returns the call context.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Logger returns the call logger.
func (s *Scope) Logger() logger.Logger {
	return s.lggr
}

// Def returns the definition of the running operation.
func (s *Scope) Def() Definition {
	return s.def
}

// Overridden reports whether the call was made with overrides.
func (s *Scope) Overridden() bool {
	return s.overrides != nil
}

// Command is the step accessor. It records a frame for name and returns the implementation the
// call resolves to, or nil when the step is neither declared nor overridden.
func (s *Scope) Command(name string) Command {
	s.frames.push(name, s.registry.stepErr(name))
	impl := s.registry.Resolve(name, s.overrides)

	s.lggr.Debugw("Resolved step", "operation", s.def.ID, "step", name, "found", impl != nil)

	return impl
}

// Frames returns a copy of the frames recorded so far.
func (s *Scope) Frames() []Frame {
	return s.frames.snapshot()
}

// Halted reports whether a step has failed in this call.
func (s *Scope) Halted() bool {
	return s.halted
}

// Err returns the payload of the failure that halted the call, or nil.
func (s *Scope) Err() error {
	return s.failure
}

// ConfigErr returns the programmer error raised during the call, or nil.
func (s *Scope) ConfigErr() *ConfigurationError {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cfgErr
}

// fail records err as the programmer error of the call and halts it. Call returns the first
// recorded error as its Go error, whatever the step overrides or hooks say.
func (s *Scope) fail(err *ConfigurationError) error {
	s.mu.Lock()
	if err.Op == "" {
		err.Op = s.def.ID
	}
	if s.cfgErr == nil {
		s.cfgErr = err
	}
	s.mu.Unlock()

	s.lggr.Debugw("Operation misconfigured", "operation", s.def.ID, "error", err)

	return s.halt(err)
}

// halt records err as the call failure unless the call is already halted, and returns the
// recorded failure.
func (s *Scope) halt(err error) error {
	if s.halted {
		return s.failure
	}

	s.halted = true
	s.failure = err
	s.lggr.Debugw("Operation halted", "operation", s.def.ID, "error", err)

	return s.failure
}
