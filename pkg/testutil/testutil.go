// Package testutil provides testing utilities for respool
package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// AssertEventually asserts that a condition becomes true within the specified timeout.
// It checks the condition every 10ms until it succeeds or the timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// CountingFactory tracks factory invocations for lifecycle assertions.
// Each Create returns a distinct int resource; Created, Disposed, and
// Accessed expose the running call counts. Safe for concurrent use.
type CountingFactory struct {
	created  atomic.Int64
	disposed atomic.Int64
	accessed atomic.Int64
}

// Create returns a fresh resource value and bumps the creation count.
func (f *CountingFactory) Create(_ context.Context) (int, error) {
	return int(f.created.Add(1)), nil
}

// Dispose bumps the disposal count.
func (f *CountingFactory) Dispose(_ context.Context, _ int) error {
	f.disposed.Add(1)
	return nil
}

// Access bumps the access count and returns the resource unchanged.
func (f *CountingFactory) Access(_ context.Context, r int) (int, error) {
	f.accessed.Add(1)
	return r, nil
}

// Created returns the number of Create calls so far.
func (f *CountingFactory) Created() int { return int(f.created.Load()) }

// Disposed returns the number of Dispose calls so far.
func (f *CountingFactory) Disposed() int { return int(f.disposed.Load()) }

// Accessed returns the number of Access calls so far.
func (f *CountingFactory) Accessed() int { return int(f.accessed.Load()) }
