package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackico-ai/hati-operation/pkg/logger"
	"github.com/hackico-ai/hati-operation/result"
)

func newTestScope(t *testing.T, r *Registry, overrides *OverrideSet) *Scope {
	t.Helper()

	return newScope(t.Context(), logger.Test(t), Definition{ID: "test"}, r, overrides)
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	t.Run("unpacks the value of a success", func(t *testing.T) {
		t.Parallel()

		s := newTestScope(t, NewRegistry(), nil)

		v, err := Unwrap(s, result.Success("Valid Result"))

		require.NoError(t, err)
		assert.Equal(t, "Valid Result", v)
		assert.False(t, s.Halted())
	})

	t.Run("halts on a failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		s := newTestScope(t, NewRegistry(), nil)

		_, err := Unwrap(s, result.Failure[string](boom))

		require.ErrorIs(t, err, boom)
		assert.True(t, s.Halted())
		require.ErrorIs(t, s.Err(), boom)
	})

	t.Run("uses the pending frame error override", func(t *testing.T) {
		t.Parallel()

		errDeclined := errors.New("DEBIT_DECLINED")
		r := NewRegistry()
		require.NoError(t, r.RegisterStep("debit", failCommand(errors.New("insufficient funds")), errDeclined))
		s := newTestScope(t, r, nil)

		_, err := Unwrap(s, s.Command("debit").Call(s.Context(), nil))

		require.ErrorIs(t, err, errDeclined)
		frames := s.Frames()
		require.Len(t, frames, 1)
		assert.False(t, frames[0].Done)
	})

	t.Run("ignores the override of a frame already unwrapped", func(t *testing.T) {
		t.Parallel()

		errDeclined := errors.New("DEBIT_DECLINED")
		original := errors.New("original")
		r := NewRegistry()
		require.NoError(t, r.RegisterStep("debit", constCommand("ok"), errDeclined))
		s := newTestScope(t, r, nil)

		_, err := Unwrap(s, s.Command("debit").Call(s.Context(), nil))
		require.NoError(t, err)

		_, err = Unwrap(s, result.Failure[any](original))
		require.ErrorIs(t, err, original)
	})

	t.Run("short-circuits after a halt", func(t *testing.T) {
		t.Parallel()

		first := errors.New("first")
		s := newTestScope(t, NewRegistry(), nil)

		_, err := Unwrap(s, result.Failure[int](first))
		require.ErrorIs(t, err, first)

		_, err = Unwrap(s, result.Success(1))
		require.ErrorIs(t, err, first)
	})
}

func TestValue(t *testing.T) {
	t.Parallel()

	errMissing := errors.New("missing")

	tests := []struct {
		name       string
		value      *int
		override   error
		wantErr    error
		wantHalted bool
	}{
		{
			name:  "non nil value is returned",
			value: new(int),
		},
		{
			name:  "nil value without override is returned",
			value: nil,
		},
		{
			name:       "nil value with override halts",
			value:      nil,
			override:   errMissing,
			wantErr:    errMissing,
			wantHalted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRegistry()
			require.NoError(t, r.RegisterStep("find", constCommand(nil), nil))
			s := newTestScope(t, r, nil)
			s.Command("find")

			v, err := Value(s, tt.value, tt.override)

			assert.Equal(t, tt.wantHalted, s.Halted())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.value, v)
			assert.True(t, s.Frames()[0].Done)
		})
	}

	t.Run("zero scalar is not nil", func(t *testing.T) {
		t.Parallel()

		s := newTestScope(t, NewRegistry(), nil)

		v, err := Value(s, 0, errMissing)

		require.NoError(t, err)
		assert.Equal(t, 0, v)
	})
}

func TestTry(t *testing.T) {
	t.Parallel()

	t.Run("evaluates the block", func(t *testing.T) {
		t.Parallel()

		s := newTestScope(t, NewRegistry(), nil)

		v, err := Try(s, func(context.Context) (int, error) { return 1, nil }, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("wraps a returned error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("Booom")
		s := newTestScope(t, NewRegistry(), nil)

		_, err := Try(s, func(context.Context) (int, error) { return 0, boom }, nil)

		require.ErrorIs(t, err, boom)
		assert.True(t, s.Halted())
	})

	t.Run("wraps a panic", func(t *testing.T) {
		t.Parallel()

		s := newTestScope(t, NewRegistry(), nil)

		_, err := Try(s, func(context.Context) (int, error) { panic("Booom") }, nil)

		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "Booom", panicErr.Value)
		require.EqualError(t, err, "panic: Booom")
	})

	t.Run("uses the override", func(t *testing.T) {
		t.Parallel()

		errOverride := errors.New("override")
		s := newTestScope(t, NewRegistry(), nil)

		_, err := Try(s, func(context.Context) (int, error) { panic(errors.New("inner")) }, errOverride)

		require.ErrorIs(t, err, errOverride)
	})

	t.Run("does not run after a halt", func(t *testing.T) {
		t.Parallel()

		first := errors.New("first")
		s := newTestScope(t, NewRegistry(), nil)
		_, _ = Unwrap(s, result.Failure[int](first))

		ran := false
		_, err := Try(s, func(context.Context) (int, error) {
			ran = true
			return 1, nil
		}, nil)

		require.ErrorIs(t, err, first)
		assert.False(t, ran)
	})
}

func TestStep(t *testing.T) {
	t.Parallel()

	t.Run("calls the resolved command with the input", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		double := CommandFunc[int, int](func(_ context.Context, in int) (int, error) { return in * 2, nil })
		require.NoError(t, r.RegisterStep("double", double, nil))
		s := newTestScope(t, r, nil)

		v, err := Step[int](s, "double", 21)

		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, []Frame{{Step: "double", Done: true}}, s.Frames())
	})

	t.Run("uses the call overrides", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.RegisterStep("lookup", constCommand("default"), nil))
		s := newTestScope(t, r, &OverrideSet{Steps: map[string]Command{"lookup": constCommand("mock")}})

		v, err := Step[string](s, "lookup", nil)

		require.NoError(t, err)
		assert.Equal(t, "mock", v)
		assert.True(t, s.Overridden())
	})

	t.Run("unknown step halts", func(t *testing.T) {
		t.Parallel()

		s := newTestScope(t, NewRegistry(), nil)

		_, err := Step[int](s, "missing", nil)

		require.ErrorIs(t, err, ErrUnknownStep)
		assert.True(t, s.Halted())
	})

	t.Run("panicking command fails with the step override", func(t *testing.T) {
		t.Parallel()

		errStep := errors.New("step failed")
		r := NewRegistry()
		boom := CommandFunc[any, int](func(context.Context, any) (int, error) { panic("boom") })
		require.NoError(t, r.RegisterStep("boom", boom, errStep))
		s := newTestScope(t, r, nil)

		_, err := Step[int](s, "boom", nil)

		require.ErrorIs(t, err, errStep)
	})

	t.Run("wrong output type halts", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.RegisterStep("lookup", constCommand("text"), nil))
		s := newTestScope(t, r, nil)

		_, err := Step[int](s, "lookup", nil)

		require.ErrorIs(t, err, ErrTypeMismatch)
		require.ErrorAs(t, err, new(*ConfigurationError))
		assert.Same(t, s.ConfigErr(), err)
	})

	t.Run("wrong input type is a configuration error", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		double := CommandFunc[int, int](func(_ context.Context, in int) (int, error) { return in * 2, nil })
		require.NoError(t, r.RegisterStep("double", double, nil))
		s := newTestScope(t, r, nil)

		_, err := Step[int](s, "double", "21")

		require.ErrorIs(t, err, ErrTypeMismatch)
		require.True(t, s.Halted())
		cfgErr := s.ConfigErr()
		require.NotNil(t, cfgErr)
		assert.Equal(t, s.Def().ID, cfgErr.Op)
	})

	t.Run("wrong input type ignores the error override", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		double := CommandFunc[int, int](func(_ context.Context, in int) (int, error) { return in * 2, nil })
		require.NoError(t, r.RegisterStep("double", double, errors.New("DOUBLE_FAILED")))
		s := newTestScope(t, r, nil)

		_, err := Step[int](s, "double", "21")

		require.ErrorIs(t, err, ErrTypeMismatch)
		require.NotNil(t, s.ConfigErr())
	})

	t.Run("later steps do not run after a failure", func(t *testing.T) {
		t.Parallel()

		calls := 0
		counting := CommandFunc[any, int](func(context.Context, any) (int, error) {
			calls++
			return calls, nil
		})
		r := NewRegistry()
		require.NoError(t, r.RegisterStep("fail", failCommand(errors.New("fail")), nil))
		require.NoError(t, r.RegisterStep("count", counting, nil))
		s := newTestScope(t, r, nil)

		_, err := Step[int](s, "fail", nil)
		require.Error(t, err)
		_, err = Step[int](s, "count", nil)
		require.EqualError(t, err, "fail")

		assert.Equal(t, 0, calls)
		assert.Len(t, s.Frames(), 1)
	})
}

func Test_isNil(t *testing.T) {
	t.Parallel()

	var nilMap map[string]int
	var nilErr error

	assert.True(t, isNil(nil))
	assert.True(t, isNil(nilMap))
	assert.True(t, isNil(nilErr))
	assert.False(t, isNil(0))
	assert.False(t, isNil(""))
	assert.False(t, isNil(map[string]int{}))
}
