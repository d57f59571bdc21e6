package chain

import (
	"github.com/vyrodovalexey/avarouter/internal/util"
)

// execution is the cursor state of one chain invocation.
type execution struct {
	c         *Context
	handlers  []Handler
	failure   error
	violation error
}

// Execute runs handlers in order on the calling goroutine.
//
// It returns nil when a handler produced a response, a
// *util.ContinuationError if any handler called next twice, a
// *util.HandlerError when a handler failed (the remainder of the chain is
// skipped), and a *util.FallThroughError when the chain ended without a
// response.
func Execute(c *Context, handlers []Handler) error {
	e := &execution{c: c, handlers: handlers}
	_ = e.step(0)

	switch {
	case e.violation != nil:
		return e.violation
	case e.failure != nil:
		return e.failure
	case !c.Responded():
		return util.NewFallThroughError(c.Method(), c.Path(), len(handlers))
	default:
		return nil
	}
}

func (e *execution) step(i int) error {
	if e.failure != nil {
		return e.failure
	}
	if i >= len(e.handlers) {
		return nil
	}

	h := e.handlers[i]
	if err := e.c.Context().Err(); err != nil {
		e.failure = util.NewHandlerError(i, HandlerName(h), err)
		return e.failure
	}

	called := false
	next := func() error {
		if called {
			v := util.NewContinuationError(i, HandlerName(h))
			if e.violation == nil {
				e.violation = v
			}
			return v
		}
		called = true
		return e.step(i + 1)
	}

	if err := h.Serve(e.c, next); err != nil && e.failure == nil && e.violation == nil {
		e.failure = util.NewHandlerError(i, HandlerName(h), err)
	}

	// Earlier handlers observe recorded errors through next even when a
	// later handler swallowed them.
	if e.violation != nil {
		return e.violation
	}
	return e.failure
}
