package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackico-ai/hati-operation/result"
)

func constCommand(v any) Command {
	return ResultFunc[any, any](func(_ context.Context, _ any) result.Result[any] {
		return result.Success(v)
	})
}

func failCommand(err error) Command {
	return ResultFunc[any, any](func(_ context.Context, _ any) result.Result[any] {
		return result.Failure[any](err)
	})
}

func TestRegistry_Empty(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	assert.Empty(t, r.Steps())
	assert.Empty(t, r.Hooks())
	_, ok := r.Params()
	assert.False(t, ok)
	assert.Nil(t, r.Resolve("missing", nil))
}

func TestRegistry_RegisterStep(t *testing.T) {
	t.Parallel()

	errDeclined := errors.New("declined")
	r := NewRegistry()

	require.NoError(t, r.RegisterStep("lookup", constCommand("first"), nil))
	require.NoError(t, r.RegisterStep("debit", constCommand("debit"), errDeclined))
	// redefinition overwrites the previous binding
	require.NoError(t, r.RegisterStep("lookup", constCommand("second"), nil))

	assert.Equal(t, []string{"debit", "lookup"}, r.Steps())

	binding, ok := r.Step("debit")
	require.True(t, ok)
	assert.Equal(t, "debit", binding.Name)
	require.ErrorIs(t, binding.Err, errDeclined)

	res := r.Resolve("lookup", nil).Call(t.Context(), nil)
	assert.Equal(t, "second", res.Value())
}

func TestRegistry_RegisterStep_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stepName string
		impl     Command
		wantErr  string
	}{
		{
			name:     "empty name",
			stepName: "",
			impl:     constCommand(1),
			wantErr:  "empty step name",
		},
		{
			name:     "nil implementation",
			stepName: "lookup",
			impl:     nil,
			wantErr:  `step "lookup" has no implementation`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewRegistry().RegisterStep(tt.stepName, tt.impl, nil)

			require.ErrorIs(t, err, ErrInvalidStep)
			require.ErrorContains(t, err, tt.wantErr)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRegistry_Resolve_OverridesWin(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.RegisterStep("lookup", constCommand("default"), nil))

	overrides := &OverrideSet{Steps: map[string]Command{
		"lookup": constCommand("override"),
		"extra":  constCommand("extra"),
	}}

	assert.Equal(t, "override", r.Resolve("lookup", overrides).Call(t.Context(), nil).Value())
	assert.Equal(t, "extra", r.Resolve("extra", overrides).Call(t.Context(), nil).Value())
	assert.Equal(t, "default", r.Resolve("lookup", &OverrideSet{}).Call(t.Context(), nil).Value())
	assert.Nil(t, r.Resolve("unknown", overrides))
}

func TestRegistry_ParamsAndHooks(t *testing.T) {
	t.Parallel()

	errParams := errors.New("bad params")
	errOverride := errors.New("override params error")
	r := NewRegistry()

	r.RegisterParams(constCommand("first"), nil)
	r.RegisterParams(constCommand("second"), errParams)

	params, ok := r.Params()
	require.True(t, ok)
	require.ErrorIs(t, params.Err, errParams)

	transform, errOver := r.resolveParams(nil)
	assert.Equal(t, "second", transform.Call(t.Context(), nil).Value())
	require.ErrorIs(t, errOver, errParams)

	transform, errOver = r.resolveParams(&OverrideSet{Params: constCommand("override"), ParamsErr: errOverride})
	assert.Equal(t, "override", transform.Call(t.Context(), nil).Value())
	require.ErrorIs(t, errOver, errOverride)

	// an override set without params keeps the registry transform and error
	transform, errOver = r.resolveParams(&OverrideSet{})
	assert.Equal(t, "second", transform.Call(t.Context(), nil).Value())
	require.ErrorIs(t, errOver, errParams)

	r.RegisterParams(nil, nil)
	_, ok = r.Params()
	assert.False(t, ok)

	hook := func(_ context.Context, res result.Result[any]) result.Result[any] { return res }
	r.RegisterHook(FailureHook, hook)
	r.RegisterHook(SuccessHook, hook)
	assert.Equal(t, []HookKind{SuccessHook, FailureHook}, r.Hooks())
	assert.NotNil(t, r.Hook(SuccessHook))

	r.RegisterHook(SuccessHook, nil)
	assert.Nil(t, r.Hook(SuccessHook))
	assert.Equal(t, "on_failure", FailureHook.String())
}

func TestRegistry_Recovered(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	var panicErr *PanicError
	require.ErrorAs(t, r.recovered("boom"), &panicErr)
	assert.Equal(t, "boom", panicErr.Value)

	errUnexpected := errors.New("unexpected")
	r.RegisterUnexpectedError(errUnexpected)
	require.ErrorIs(t, r.recovered("boom"), errUnexpected)
}
