package middleware

// HTTP header constants.
const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderRetryAfter    = "Retry-After"
	HeaderXRequestID    = "X-Request-ID"
)

// Content type constants.
const (
	ContentTypeJSON           = "application/json"
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
	ContentTypeTextPlain      = "text/plain; charset=utf-8"
	ContentTypeHTML           = "text/html; charset=utf-8"
)

// Attribute keys set on the chain context by handlers in this package.
const (
	// FormAttribute holds the map[string]string decoded by ParseBody.
	FormAttribute = "form"

	// RequestIDAttribute holds the request ID assigned by RequestID.
	RequestIDAttribute = "requestID"

	// HitNumberAttribute holds the int64 stored by CountHits.
	HitNumberAttribute = "hitNumber"
)

// unknownRoute labels metrics for contexts without a bound route.
const unknownRoute = "unknown"

// Response bodies.
const (
	bodyRateLimitExceeded = "rate limit exceeded"
)
