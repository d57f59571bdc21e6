// Package counter provides the shared hit counter used by counting
// handlers. It is the only state shared across requests and is injected
// into handlers explicitly.
package counter

import (
	"context"
	"sync/atomic"
)

// Counter is a monotonically increasing hit counter.
type Counter interface {
	// Increment adds one hit and returns the new total.
	Increment(ctx context.Context) (int64, error)

	// Value returns the current total without changing it.
	Value(ctx context.Context) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Memory is a process-local Counter backed by an atomic integer.
type Memory struct {
	hits atomic.Int64
}

// NewMemory creates an in-memory counter whose first Increment returns
// start+1.
func NewMemory(start int64) *Memory {
	m := &Memory{}
	m.hits.Store(start)
	return m
}

// Increment implements Counter.
func (m *Memory) Increment(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.hits.Add(1), nil
}

// Value implements Counter.
func (m *Memory) Value(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.hits.Load(), nil
}

// Close implements Counter.
func (m *Memory) Close() error {
	return nil
}
