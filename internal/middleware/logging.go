package middleware

import (
	"time"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// Logging returns a pass-through handler that logs one entry per
// request after the rest of the chain has run. It always calls next and
// returns next's error unchanged.
func Logging(logger observability.Logger) chain.Handler {
	return chain.Named("logging", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		start := time.Now()

		err := next()

		fields := []observability.Field{
			observability.String("method", c.Method()),
			observability.String("path", c.Path()),
			observability.String("route", c.Route()),
			observability.Int("status", c.StatusCode()),
			observability.Bool("responded", c.Responded()),
			observability.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, observability.Error(err))
		}

		logger.WithContext(c.Context()).Info(c.Method()+" - "+c.Path(), fields...)
		return err
	}))
}
