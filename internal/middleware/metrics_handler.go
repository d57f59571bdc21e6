package middleware

import (
	"errors"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/observability"
	"github.com/vyrodovalexey/avarouter/internal/util"
)

// Metrics returns a pass-through handler that tracks in-flight chains
// and attributes chain errors to the handler that caused them.
func Metrics(m *observability.Metrics) chain.Handler {
	return chain.Named("metrics", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		m.IncrementActive()
		defer m.DecrementActive()

		err := next()

		var handlerErr *util.HandlerError
		var contErr *util.ContinuationError
		switch {
		case errors.As(err, &contErr):
			m.RecordChainError(observability.OutcomeDoubleContinuation, contErr.Handler)
		case errors.As(err, &handlerErr):
			m.RecordChainError(observability.OutcomeHandlerFailure, handlerErr.Handler)
		}
		return err
	}))
}
