// Package middleware provides chain handlers that collaborate with the
// router: pass-through handlers that prepare the request and terminal
// handlers that produce responses.
//
// # Pass-through handlers
//
//   - Logging: one structured entry per request
//   - RequestID: assigns or propagates X-Request-ID
//   - Recovery: turns a panic further down the chain into a handler failure
//   - Tracing: OpenTelemetry server span around the rest of the chain
//   - Metrics: in-flight gauge and per-handler error attribution
//   - ParseBody: decodes form and JSON bodies into FormAttribute
//   - SetAttribute, CountHits: seed attributes for later handlers
//
// # Terminal handlers
//
//   - Text, Template, HTMLTemplate: fixed or templated bodies
//   - HitCounter: increments a counter and reports the total
//   - Static: serves files below a mount, falling through when absent
//   - RateLimit: rejects with 429 when the limiter is exhausted
//
// # Usage
//
// Handlers are registered on routes in the order they should run:
//
//	r := router.New()
//	r.Use(middleware.Recovery(logger), middleware.Logging(logger))
//	r.Get("/:flavor/tea", middleware.Template("I could go for some {flavor} tea!"))
package middleware
