package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// PanicError is returned by Recovery when a later handler panicked.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Recovery returns a pass-through handler that recovers from panics in
// the rest of the chain and reports them as a handler failure.
func Recovery(logger observability.Logger) chain.Handler {
	return chain.Named("recovery", chain.HandlerFunc(func(c *chain.Context, next chain.Next) (err error) {
		defer func() {
			if v := recover(); v != nil {
				logger.WithContext(c.Context()).Error("panic recovered",
					observability.String("path", c.Path()),
					observability.String("method", c.Method()),
					observability.String("route", c.Route()),
					observability.Any("error", v),
					observability.String("stack", string(debug.Stack())),
				)

				GetMiddlewareMetrics().panicsRecovered.Inc()
				err = &PanicError{Value: v}
			}
		}()

		return next()
	}))
}
