package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// Rate limiter default configuration constants.
const (
	// DefaultClientTTL is the default TTL for per-key limiter entries.
	DefaultClientTTL = 10 * time.Minute

	// MinCleanupInterval is the minimum interval for cleanup operations.
	MinCleanupInterval = 10 * time.Second

	// MaxCleanupInterval is the maximum interval for cleanup operations.
	MaxCleanupInterval = time.Minute
)

// KeyFunc derives the rate limiting key of a request.
type KeyFunc func(c *chain.Context) string

// HeaderKey keys requests by the value of a request header, for example
// X-Real-IP set by a fronting proxy.
func HeaderKey(name string) KeyFunc {
	return func(c *chain.Context) string {
		return c.Header().Get(name)
	}
}

// clientEntry holds a limiter and its last access time for TTL cleanup.
type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter is a token bucket limiter, global or keyed.
type RateLimiter struct {
	limiter   *rate.Limiter
	keyFunc   KeyFunc
	clients   map[string]*clientEntry
	mu        sync.Mutex
	rps       float64
	burst     int
	logger    observability.Logger
	metrics   *observability.Metrics
	clientTTL time.Duration
	stopCh    chan struct{}
	stopped   bool
}

// RateLimiterOption is a functional option for configuring the rate limiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterLogger sets the logger for the rate limiter.
func WithRateLimiterLogger(logger observability.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// WithRateLimiterMetrics records rejections on m.
func WithRateLimiterMetrics(m *observability.Metrics) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.metrics = m
	}
}

// WithKeyFunc enables per-key limiting.
func WithKeyFunc(fn KeyFunc) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.keyFunc = fn
	}
}

// WithClientTTL sets how long an idle per-key limiter is retained.
func WithClientTTL(ttl time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		if ttl > 0 {
			rl.clientTTL = ttl
		}
	}
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(rps float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		clients:   make(map[string]*clientEntry),
		rps:       rps,
		burst:     burst,
		logger:    observability.NopLogger(),
		clientTTL: DefaultClientTTL,
		stopCh:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Allow reports whether a request with the given key may proceed. The
// key is ignored by a global limiter.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.keyFunc == nil {
		return rl.limiter.Allow()
	}

	now := time.Now()

	rl.mu.Lock()
	entry, exists := rl.clients[key]
	if !exists {
		entry = &clientEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
		}
		rl.clients[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// Clients returns the number of tracked keys.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// RateLimit returns a handler that answers 429 when the limiter is
// exhausted and otherwise calls next.
func RateLimit(rl *RateLimiter) chain.Handler {
	return chain.Named("rate_limit", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		var key string
		if rl.keyFunc != nil {
			key = rl.keyFunc(c)
		}

		route := routeLabel(c.Route())
		if !rl.Allow(key) {
			rl.logger.WithContext(c.Context()).Warn("rate limit exceeded",
				observability.String("key", key),
				observability.String("path", c.Path()),
			)
			GetMiddlewareMetrics().rateLimitRejected.WithLabelValues(route).Inc()
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(route)
			}

			c.SetHeader(HeaderRetryAfter, strconv.Itoa(1))
			return c.String(http.StatusTooManyRequests, bodyRateLimitExceeded)
		}

		GetMiddlewareMetrics().rateLimitAllowed.WithLabelValues(route).Inc()
		return next()
	}))
}

// CleanupOldClients removes per-key limiters idle for longer than maxAge.
func (rl *RateLimiter) CleanupOldClients(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range rl.clients {
		if now.Sub(entry.lastAccess) > maxAge {
			delete(rl.clients, key)
			removed++
		}
	}

	if removed > 0 {
		rl.logger.Debug("cleaned up expired rate limiter entries",
			observability.Int("removed", removed),
			observability.Int("remaining", len(rl.clients)),
		)
	}
}

// StartAutoCleanup starts TTL cleanup of per-key limiters until Stop.
func (rl *RateLimiter) StartAutoCleanup() {
	rl.mu.Lock()
	if rl.stopped {
		rl.mu.Unlock()
		return
	}
	ttl := rl.clientTTL
	rl.mu.Unlock()

	interval := ttl / 2
	if interval > MaxCleanupInterval {
		interval = MaxCleanupInterval
	}
	if interval < MinCleanupInterval {
		interval = MinCleanupInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.CleanupOldClients(ttl)
			case <-rl.stopCh:
				return
			}
		}
	}()
}

// Stop stops the cleanup goroutine. Stop is idempotent.
func (rl *RateLimiter) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.stopped {
		rl.stopped = true
		close(rl.stopCh)
	}
}
