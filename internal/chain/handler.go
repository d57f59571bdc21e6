package chain

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Next is the one-shot continuation passed to a Handler. Calling it runs
// the rest of the chain and returns its error.
type Next func() error

// Handler is a unit of per-request work. A pass-through handler calls
// next; a terminal handler writes a response and returns without calling
// it.
type Handler interface {
	Serve(c *Context, next Next) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(c *Context, next Next) error

// Serve calls f(c, next).
func (f HandlerFunc) Serve(c *Context, next Next) error {
	return f(c, next)
}

// Named attaches a name to a handler for logs and errors.
func Named(name string, h Handler) Handler {
	return &namedHandler{name: name, Handler: h}
}

type namedHandler struct {
	Handler
	name string
}

// IsNil reports whether h cannot be served: a nil interface, a nil
// HandlerFunc, or a name attached to either.
func IsNil(h Handler) bool {
	switch v := h.(type) {
	case nil:
		return true
	case HandlerFunc:
		return v == nil
	case *namedHandler:
		return v == nil || IsNil(v.Handler)
	default:
		return false
	}
}

// HandlerName returns the display name of a handler.
func HandlerName(h Handler) string {
	switch v := h.(type) {
	case *namedHandler:
		return v.name
	case HandlerFunc:
		name := runtime.FuncForPC(reflect.ValueOf(v).Pointer()).Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		return name
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", h)
	}
}
