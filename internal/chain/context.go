package chain

import (
	"context"
	"io"
	"maps"
	"net/http"
)

// Request is the decoded inbound request the chain operates on.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   io.Reader
}

// ResponseSink receives the response produced by a chain.
type ResponseSink interface {
	WriteStatus(code int)
	WriteHeader(name, value string)
	WriteBody(b []byte) (int, error)
	End()
}

// Context is the mutable per-request state threaded through a chain.
// A Context belongs to exactly one in-flight request and is never shared.
type Context struct {
	ctx       context.Context
	req       *Request
	sink      ResponseSink
	params    map[string]string
	captures  []string
	remainder string
	route     string
	attrs     map[string]any
	responded bool
	status    int
	ended     bool
}

// NewContext creates a Context for a single request.
func NewContext(ctx context.Context, req *Request, sink ResponseSink) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	return &Context{
		ctx:       ctx,
		req:       req,
		sink:      sink,
		params:    make(map[string]string),
		attrs:     make(map[string]any),
		remainder: req.Path,
	}
}

// Context returns the request's context.Context. Handlers that suspend
// on I/O should honour its cancellation.
func (c *Context) Context() context.Context {
	return c.ctx
}

// WithContext replaces the request's context.Context.
func (c *Context) WithContext(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.req.Method
}

// Path returns the request path.
func (c *Context) Path() string {
	return c.req.Path
}

// Header returns the request headers.
func (c *Context) Header() http.Header {
	return c.req.Header
}

// Body returns the raw request body, which may be nil.
func (c *Context) Body() io.Reader {
	return c.req.Body
}

// Bind records the routing outcome on the Context. It is called by the
// dispatcher once, before the chain runs.
func (c *Context) Bind(route string, params map[string]string, captures []string, remainder string) {
	c.route = route
	c.params = make(map[string]string, len(params))
	maps.Copy(c.params, params)
	c.captures = append([]string(nil), captures...)
	c.remainder = remainder
}

// Route returns the name of the matched route.
func (c *Context) Route() string {
	return c.route
}

// Param returns a named path parameter.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Params returns a copy of the bound path parameters. Changing the copy
// has no effect on routing, which has already completed.
func (c *Context) Params() map[string]string {
	return maps.Clone(c.params)
}

// Captures returns the positional groups of a regular expression route.
func (c *Context) Captures() []string {
	return append([]string(nil), c.captures...)
}

// Remainder returns the part of the path below a prefix mount. Without a
// prefix match it is the full path.
func (c *Context) Remainder() string {
	return c.remainder
}

// Set stores an attribute for handlers later in the chain.
func (c *Context) Set(key string, value any) {
	c.attrs[key] = value
}

// Get returns an attribute set earlier in the chain.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// MustGet returns an attribute or panics if it was never set.
func (c *Context) MustGet(key string) any {
	v, ok := c.attrs[key]
	if !ok {
		panic("chain: attribute " + key + " does not exist")
	}
	return v
}

// Responded reports whether a handler produced a response.
func (c *Context) Responded() bool {
	return c.responded
}

// MarkResponded records that the response was produced out of band, for
// example by a collaborator writing to the sink directly.
func (c *Context) MarkResponded() {
	c.responded = true
}

// StatusCode returns the status written so far, or 0.
func (c *Context) StatusCode() int {
	return c.status
}

// Status writes the response status.
func (c *Context) Status(code int) {
	c.responded = true
	c.status = code
	c.sink.WriteStatus(code)
}

// SetHeader writes a response header. Headers must be set before Status.
func (c *Context) SetHeader(name, value string) {
	c.sink.WriteHeader(name, value)
}

// Write writes response body bytes.
func (c *Context) Write(b []byte) (int, error) {
	c.responded = true
	if c.status == 0 {
		c.status = http.StatusOK
	}
	return c.sink.WriteBody(b)
}

// String writes a complete plain-text response and ends it.
func (c *Context) String(code int, body string) error {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.Status(code)
	if _, err := c.Write([]byte(body)); err != nil {
		return err
	}
	c.End()
	return nil
}

// End finishes the response.
func (c *Context) End() {
	if c.ended {
		return
	}
	c.ended = true
	c.responded = true
	c.sink.End()
}
