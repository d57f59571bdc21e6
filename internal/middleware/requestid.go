package middleware

import (
	"github.com/google/uuid"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/util"
)

// RequestIDHeader is the header name for request ID.
const RequestIDHeader = HeaderXRequestID

// RequestID returns a pass-through handler that propagates the inbound
// X-Request-ID or generates a UUID. The ID is stored on the
// context.Context, as RequestIDAttribute, and echoed in the response.
func RequestID() chain.Handler {
	return RequestIDWithGenerator(func() string {
		return uuid.New().String()
	})
}

// RequestIDWithGenerator returns a RequestID handler using a custom ID
// generator.
func RequestIDWithGenerator(generator func() string) chain.Handler {
	return chain.Named("request_id", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		requestID := c.Header().Get(RequestIDHeader)
		if requestID == "" {
			requestID = generator()
		}

		c.WithContext(util.ContextWithRequestID(c.Context(), requestID))
		c.Set(RequestIDAttribute, requestID)
		c.SetHeader(RequestIDHeader, requestID)

		return next()
	}))
}
