// Package util provides utility functions and types shared by the
// router, the chain executor and the HTTP boundary.
//
// # Context Helpers
//
// Context utilities for request-scoped data:
//
//	ctx = util.ContextWithRequestID(ctx, "req-123")
//	requestID := util.RequestIDFromContext(ctx)
//
// # Error Types
//
// Structured error types for the dispatch outcomes:
//
//   - RouteNotFoundError: no route matched (ErrNoRouteMatch)
//   - ContinuationError: a handler called next twice (ErrDoubleContinuation)
//   - FallThroughError: chain exhausted without a response (ErrFallThrough)
//   - HandlerError: a handler failed (ErrHandlerFailure)
//   - ConfigError, ValidationError: configuration problems
//
// # Validation
//
// Input validation helpers used by the configuration layer:
//
//	err := util.ValidateRegex(`^/(coffee)+$`)
//	err := util.ValidateHTTPMethod("GET")
package util
