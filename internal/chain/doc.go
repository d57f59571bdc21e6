// Package chain provides the per-request Context and the middleware
// chain executor.
//
// A chain is the ordered handler sequence selected for one request. Each
// handler receives the request Context and a one-shot continuation:
//
//	logRequest := chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
//	    log.Printf("%s - %s", c.Method(), c.Path())
//	    return next()
//	})
//
//	hello := chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
//	    return c.String(http.StatusOK, "Hello world!")
//	})
//
//	err := chain.Execute(c, []chain.Handler{logRequest, hello})
//
// Not calling next ends the chain. Calling it twice is reported as
// util.ErrDoubleContinuation, a handler error aborts the chain as
// util.ErrHandlerFailure, and a chain that ends without writing a
// response is reported as util.ErrFallThrough.
package chain
