// Package optest provides utilities for testing operations.
package optest

import (
	"context"
	"testing"

	"github.com/hackico-ai/hati-operation/operations"
	"github.com/hackico-ai/hati-operation/pkg/logger"
	"github.com/hackico-ai/hati-operation/result"
)

// NewBundle creates a new operations bundle for testing with a test logger
// and a memory reporter.
func NewBundle(t *testing.T) operations.Bundle {
	t.Helper()

	return operations.NewBundle(
		t.Context, logger.Test(t), operations.NewMemoryReporter(),
	)
}

// Stub returns a Command that always returns res and counts its calls in calls, when not nil.
func Stub(res result.Result[any], calls *int) operations.Command {
	return operations.ResultFunc[any, any](func(_ context.Context, _ any) result.Result[any] {
		if calls != nil {
			*calls++
		}

		return res
	})
}
