package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/observability"
	"github.com/vyrodovalexey/avarouter/internal/router"
	"github.com/vyrodovalexey/avarouter/internal/util"
)

// Default response bodies supplied when the chain produced none.
const (
	BodyNotFound      = "404 page not found"
	BodyInternalError = "500 internal server error"
)

// Dispatcher serves HTTP requests through a sealed router. The router can
// be swapped at runtime; in-flight requests finish on the router they
// resolved against.
type Dispatcher struct {
	router  atomic.Pointer[router.Router]
	logger  observability.Logger
	metrics *observability.Metrics
}

// DispatcherOption is a functional option for configuring the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the dispatcher.
func WithDispatcherLogger(logger observability.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithDispatcherMetrics sets the metrics for the dispatcher.
func WithDispatcherMetrics(m *observability.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a dispatcher serving r. The router is sealed.
func NewDispatcher(r *router.Router, opts ...DispatcherOption) (*Dispatcher, error) {
	if r == nil {
		return nil, ErrNilRouter
	}

	d := &Dispatcher{
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	r.Seal()
	d.router.Store(r)
	return d, nil
}

// Swap replaces the active router. The router is sealed.
func (d *Dispatcher) Swap(r *router.Router) error {
	if r == nil {
		return ErrNilRouter
	}
	r.Seal()
	d.router.Store(r)
	return nil
}

// Router returns the active router.
func (d *Dispatcher) Router() *router.Router {
	return d.router.Load()
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &chain.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header,
		Body:   r.Body,
	}
	d.Dispatch(r.Context(), req, newResponseSink(w))
}

// Dispatch resolves req, runs its chain against sink and writes the
// default response when the chain did not. It returns the outcome label.
func (d *Dispatcher) Dispatch(ctx context.Context, req *chain.Request, sink chain.ResponseSink) string {
	start := time.Now()
	ctx = util.ContextWithStartTime(ctx, start)

	res, err := d.router.Load().Resolve(req.Method, req.Path)
	if err != nil {
		writeDefault(sink, http.StatusNotFound, BodyNotFound)
		d.record(req.Method, observability.UnmatchedRoute, observability.OutcomeNoRoute, start)
		return observability.OutcomeNoRoute
	}

	route := res.Route.Name()
	ctx = util.ContextWithRoute(ctx, route)

	c := chain.NewContext(ctx, req, sink)
	c.Bind(route, res.Params, res.Captures, res.Remainder)

	outcome := d.finish(c, chain.Execute(c, res.Handlers))
	d.record(req.Method, route, outcome, start)
	return outcome
}

// finish maps the chain result to an outcome, writing a default response
// where nothing was written.
func (d *Dispatcher) finish(c *chain.Context, err error) string {
	if err == nil {
		return observability.OutcomeOK
	}

	logger := d.logger.WithContext(c.Context())
	fields := []observability.Field{
		observability.String("method", c.Method()),
		observability.String("path", c.Path()),
		observability.Error(err),
	}

	switch {
	case errors.Is(err, util.ErrDoubleContinuation):
		logger.Error("handler called next more than once", fields...)
		d.writeIfSilent(c, http.StatusInternalServerError, BodyInternalError)
		return observability.OutcomeDoubleContinuation

	case errors.Is(err, util.ErrHandlerFailure):
		logger.Error("handler failed", fields...)
		d.writeIfSilent(c, http.StatusInternalServerError, BodyInternalError)
		return observability.OutcomeHandlerFailure

	case errors.Is(err, util.ErrFallThrough):
		logger.Warn("chain ended without a response", fields...)
		d.writeIfSilent(c, http.StatusNotFound, BodyNotFound)
		return observability.OutcomeFallThrough

	default:
		logger.Error("unexpected chain error", fields...)
		d.writeIfSilent(c, http.StatusInternalServerError, BodyInternalError)
		return observability.OutcomeHandlerFailure
	}
}

func (d *Dispatcher) writeIfSilent(c *chain.Context, code int, body string) {
	if c.Responded() {
		c.End()
		return
	}
	if err := c.String(code, body); err != nil {
		d.logger.Debug("failed to write default response", observability.Error(err))
	}
}

func (d *Dispatcher) record(method, route, outcome string, start time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordDispatch(method, route, outcome, time.Since(start))
}

func writeDefault(sink chain.ResponseSink, code int, body string) {
	sink.WriteHeader("Content-Type", "text/plain; charset=utf-8")
	sink.WriteStatus(code)
	_, _ = sink.WriteBody([]byte(body))
	sink.End()
}

// Routes returns the number of top-level routes of the active router.
func (d *Dispatcher) Routes() int {
	return len(d.router.Load().GetRoutes())
}
