// Package util provides utility functions and types for the router.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNoRouteMatch.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., HandlerError, ConfigError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNoRouteMatch       = errors.New("no route match")
	ErrDoubleContinuation = errors.New("next called more than once")
	ErrFallThrough        = errors.New("chain fell through without a response")
	ErrHandlerFailure     = errors.New("handler failure")
	ErrRouterSealed       = errors.New("router is sealed")
	ErrDuplicateRoute     = errors.New("duplicate route name")
	ErrNilHandler         = errors.New("nil handler")
	ErrConfigInvalid      = errors.New("invalid configuration")
)

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s (fields: %v)", e.Message, e.Fields)
}

// Is checks if the error matches the target.
func (e *ValidationError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: make(map[string]string)}
}

// AddField adds a field error.
func (e *ValidationError) AddField(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// HasErrors reports whether any field error was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// RouteNotFoundError is returned by Resolve when no route matches.
type RouteNotFoundError struct {
	Path   string
	Method string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	if target == ErrNoRouteMatch {
		return true
	}
	_, ok := target.(*RouteNotFoundError)
	return ok
}

// NewRouteNotFoundError creates a new RouteNotFoundError.
func NewRouteNotFoundError(method, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Path: path, Method: method}
}

// ContinuationError reports a handler that invoked its continuation more
// than once. It is a programming error in the handler.
type ContinuationError struct {
	Index   int
	Handler string
}

// Error implements the error interface.
func (e *ContinuationError) Error() string {
	return fmt.Sprintf("handler %d (%s): next called more than once", e.Index, e.Handler)
}

// Is checks if the error matches the target.
func (e *ContinuationError) Is(target error) bool {
	if target == ErrDoubleContinuation {
		return true
	}
	_, ok := target.(*ContinuationError)
	return ok
}

// NewContinuationError creates a new ContinuationError.
func NewContinuationError(index int, handler string) *ContinuationError {
	return &ContinuationError{Index: index, Handler: handler}
}

// FallThroughError reports a chain that ended without any handler
// producing a response.
type FallThroughError struct {
	Method   string
	Path     string
	Handlers int
}

// Error implements the error interface.
func (e *FallThroughError) Error() string {
	return fmt.Sprintf("chain of %d handlers for %s %s ended without a response",
		e.Handlers, e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *FallThroughError) Is(target error) bool {
	if target == ErrFallThrough {
		return true
	}
	_, ok := target.(*FallThroughError)
	return ok
}

// NewFallThroughError creates a new FallThroughError.
func NewFallThroughError(method, path string, handlers int) *FallThroughError {
	return &FallThroughError{Method: method, Path: path, Handlers: handlers}
}

// HandlerError wraps an error raised by a handler. The remaining chain is
// aborted and the error is never retried.
type HandlerError struct {
	Index   int
	Handler string
	Cause   error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d (%s) failed: %v", e.Index, e.Handler, e.Cause)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *HandlerError) Is(target error) bool {
	if target == ErrHandlerFailure {
		return true
	}
	_, ok := target.(*HandlerError)
	return ok || errors.Is(e.Cause, target)
}

// NewHandlerError creates a new HandlerError.
func NewHandlerError(index int, handler string, cause error) *HandlerError {
	return &HandlerError{Index: index, Handler: handler, Cause: cause}
}

// WrapError wraps an error with a message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
