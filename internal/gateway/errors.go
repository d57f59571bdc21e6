package gateway

import "errors"

// Sentinel errors for gateway operations.
var (
	// ErrServerNotStopped indicates that the server is not in
	// stopped state when a start operation is attempted.
	ErrServerNotStopped = errors.New("server is not in stopped state")

	// ErrServerNotRunning indicates that the server is not
	// running when a stop operation is attempted.
	ErrServerNotRunning = errors.New("server is not running")

	// ErrNilConfig indicates that a nil configuration was provided.
	ErrNilConfig = errors.New("configuration is required")

	// ErrNilRouter indicates that a nil router was provided.
	ErrNilRouter = errors.New("router is required")

	// ErrMissingDependency indicates that a configured handler needs a
	// collaborator that was not supplied.
	ErrMissingDependency = errors.New("missing handler dependency")
)
