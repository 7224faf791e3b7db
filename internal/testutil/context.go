package testutil

import (
	"context"
	"testing"
	"time"
)

// Context возвращает context с timeout, который отменяется при завершении теста.
func Context(tb testing.TB, timeout time.Duration) context.Context {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	tb.Cleanup(cancel)

	return ctx
}
