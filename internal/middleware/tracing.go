package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// Tracing returns a pass-through handler that opens a server span around
// the rest of the chain. Inbound W3C trace context is honoured.
func Tracing(tracer *observability.Tracer) chain.Handler {
	return chain.Named("tracing", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		ctx := otel.GetTextMapPropagator().Extract(c.Context(), propagation.HeaderCarrier(c.Header()))

		name := c.Method() + " " + c.Path()
		if route := c.Route(); route != "" {
			name = route
		}

		ctx, span := tracer.StartSpan(ctx, name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", c.Path()),
				attribute.String("http.route", c.Route()),
			),
		)
		defer span.End()

		c.WithContext(ctx)
		err := next()

		if status := c.StatusCode(); status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		span.SetAttributes(attribute.Bool("avarouter.responded", c.Responded()))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}))
}
