// Package health provides liveness and readiness endpoints for the
// avarouter admin listener.
package health
