package middleware

import (
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/counter"
	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// DefaultHitCountFormat is the body written by HitCounter.
const DefaultHitCountFormat = "This app's hit count: {" + HitNumberAttribute + "}"

// HitCounter returns a terminal handler that increments hits and writes
// format (DefaultHitCountFormat when empty) with the new total bound to
// the {hitNumber} placeholder. Other placeholders resolve as in
// Template. A counter error is a handler failure.
func HitCounter(hits counter.Counter, format string, metrics *observability.Metrics) chain.Handler {
	if format == "" {
		format = DefaultHitCountFormat
	}
	t := compileTemplate(format)
	return chain.Named("hit_counter", chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
		n, err := hits.Increment(c.Context())
		if err != nil {
			return fmt.Errorf("incrementing hit counter: %w", err)
		}
		if metrics != nil {
			metrics.SetHitCount(n)
		}
		c.Set(HitNumberAttribute, n)
		return c.String(http.StatusOK, t.render(c, nil))
	}))
}

// CountHits returns a pass-through handler that increments hits and
// stores the new total under HitNumberAttribute for later handlers.
func CountHits(hits counter.Counter, metrics *observability.Metrics) chain.Handler {
	return chain.Named("count_hits", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		n, err := hits.Increment(c.Context())
		if err != nil {
			return fmt.Errorf("incrementing hit counter: %w", err)
		}
		if metrics != nil {
			metrics.SetHitCount(n)
		}
		c.Set(HitNumberAttribute, n)
		return next()
	}))
}
