package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// Default breaker settings.
const (
	DefaultBreakerThreshold = 5
	DefaultBreakerTimeout   = 30 * time.Second
)

// ErrCounterUnavailable is returned while the breaker is open.
var ErrCounterUnavailable = errors.New("counter unavailable")

// Breaker is a Counter that stops calling a failing backend until it
// recovers. Cancelled requests do not count as backend failures.
type Breaker struct {
	inner  Counter
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

// BreakerOption is a functional option for configuring the breaker.
type BreakerOption func(*Breaker)

// WithBreakerLogger sets the logger for the breaker.
func WithBreakerLogger(logger observability.Logger) BreakerOption {
	return func(b *Breaker) {
		b.logger = logger
	}
}

// NewBreaker wraps inner. The breaker opens once threshold requests in an
// interval have been seen and at least half of them failed, and probes
// the backend again after timeout.
func NewBreaker(inner Counter, threshold int, timeout time.Duration, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		inner:  inner,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if timeout <= 0 {
		timeout = DefaultBreakerTimeout
	}
	thresholdU32 := safeIntToUint32(threshold)

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "counter",
		MaxRequests: 1,
		Interval:    timeout,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= thresholdU32 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return b
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

// State returns the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Increment implements Counter.
func (b *Breaker) Increment(ctx context.Context) (int64, error) {
	return b.execute(func() (int64, error) { return b.inner.Increment(ctx) })
}

// Value implements Counter.
func (b *Breaker) Value(ctx context.Context) (int64, error) {
	return b.execute(func() (int64, error) { return b.inner.Value(ctx) })
}

// Close implements Counter.
func (b *Breaker) Close() error {
	return b.inner.Close()
}

func (b *Breaker) execute(fn func() (int64, error)) (int64, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, fmt.Errorf("%w: %w", ErrCounterUnavailable, err)
	}
	if err != nil {
		return 0, err
	}
	n, _ := result.(int64)
	return n, nil
}
