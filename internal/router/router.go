package router

import (
	"fmt"
	"maps"
	"sync/atomic"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/util"
)

// Router is an ordered collection of routes resolved first-match-wins.
//
// Registration is not safe for concurrent use and must finish before the
// router is sealed. Resolve on a sealed router is lock-free.
type Router struct {
	routes     []*Route
	routeMap   map[string]*Route
	middleware []chain.Handler
	sealed     atomic.Bool
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	// Route is the matched leaf route (inside a mounted sub-router if any).
	Route *Route
	// Handlers is the full chain: router middleware, mount handlers and
	// the route's own handlers, in that order.
	Handlers  []chain.Handler
	Params    map[string]string
	Captures  []string
	Remainder string
}

// New creates a new router.
func New() *Router {
	return &Router{
		routes:   make([]*Route, 0),
		routeMap: make(map[string]*Route),
	}
}

// Use appends handlers that run before the handlers of every route
// resolved by this router.
func (r *Router) Use(handlers ...chain.Handler) error {
	if r.sealed.Load() {
		return fmt.Errorf("use: %w", util.ErrRouterSealed)
	}
	if err := checkHandlers(handlers); err != nil {
		return fmt.Errorf("use: %w", err)
	}
	r.middleware = append(r.middleware, handlers...)
	return nil
}

// AddRoute registers a route. An empty name is replaced by
// "METHODS pattern"; explicit names must be unique.
func (r *Router) AddRoute(name string, methods []string, p Pattern, handlers ...chain.Handler) error {
	return r.add(name, NewMethodSet(methods...), p, handlers, nil)
}

func (r *Router) add(name string, methods MethodSet, p Pattern, handlers []chain.Handler, sub *Router) error {
	if r.sealed.Load() {
		return fmt.Errorf("route %s: %w", p, util.ErrRouterSealed)
	}
	if p == nil {
		return fmt.Errorf("route %s: pattern is required", name)
	}
	if err := checkHandlers(handlers); err != nil {
		return fmt.Errorf("route %s: %w", p, err)
	}

	explicit := name != ""
	if !explicit {
		name = defaultRouteName(methods, p)
	}
	if _, exists := r.routeMap[name]; exists && explicit {
		return fmt.Errorf("%w: %s", util.ErrDuplicateRoute, name)
	}

	route := &Route{
		name:     name,
		methods:  methods,
		pattern:  p,
		handlers: append([]chain.Handler(nil), handlers...),
		sub:      sub,
	}

	r.routes = append(r.routes, route)
	if _, exists := r.routeMap[name]; !exists {
		r.routeMap[name] = route
	}

	return nil
}

func checkHandlers(handlers []chain.Handler) error {
	for i, h := range handlers {
		if chain.IsNil(h) {
			return fmt.Errorf("handler %d: %w", i, util.ErrNilHandler)
		}
	}
	return nil
}

// Handle parses pattern with ParsePattern and registers it for methods.
func (r *Router) Handle(methods []string, pattern string, handlers ...chain.Handler) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return fmt.Errorf("failed to parse pattern: %w", err)
	}
	return r.AddRoute("", methods, p, handlers...)
}

// Get registers a GET route.
func (r *Router) Get(pattern string, handlers ...chain.Handler) error {
	return r.Handle([]string{"GET"}, pattern, handlers...)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, handlers ...chain.Handler) error {
	return r.Handle([]string{"POST"}, pattern, handlers...)
}

// Put registers a PUT route.
func (r *Router) Put(pattern string, handlers ...chain.Handler) error {
	return r.Handle([]string{"PUT"}, pattern, handlers...)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, handlers ...chain.Handler) error {
	return r.Handle([]string{"DELETE"}, pattern, handlers...)
}

// All registers a route for any method.
func (r *Router) All(pattern string, handlers ...chain.Handler) error {
	return r.Handle(nil, pattern, handlers...)
}

// Mount registers a prefix route that delegates the remainder of the path
// to sub. The handlers run before the sub-router's chain. When sub has no
// match, resolution continues with the next route of r.
func (r *Router) Mount(prefix string, sub *Router, handlers ...chain.Handler) error {
	if sub == nil {
		return fmt.Errorf("mount %s: sub-router is required", prefix)
	}
	if sub == r {
		return fmt.Errorf("mount %s: router cannot mount itself", prefix)
	}
	return r.add("", NewMethodSet(), Prefix(prefix), handlers, sub)
}

// Seal freezes the route table, including mounted sub-routers. Further
// registration fails with util.ErrRouterSealed.
func (r *Router) Seal() {
	if r.sealed.Swap(true) {
		return
	}
	for _, route := range r.routes {
		if route.sub != nil {
			route.sub.Seal()
		}
	}
}

// Sealed reports whether the router is sealed.
func (r *Router) Sealed() bool {
	return r.sealed.Load()
}

// Resolve selects the chain for a request. It returns a
// *util.RouteNotFoundError when no route matches.
func (r *Router) Resolve(method, path string) (*Resolution, error) {
	if res := r.resolve(method, path); res != nil {
		return res, nil
	}
	return nil, util.NewRouteNotFoundError(method, path)
}

func (r *Router) resolve(method, path string) *Resolution {
	for _, route := range r.routes {
		if !route.Applies(method) {
			continue
		}

		m := route.pattern.Match(path)
		if !m.Matched {
			continue
		}

		if route.sub == nil {
			return &Resolution{
				Route:     route,
				Handlers:  r.chainFor(route.handlers),
				Params:    m.Params,
				Captures:  m.Captures,
				Remainder: m.Remainder,
			}
		}

		nested := route.sub.resolve(method, m.Remainder)
		if nested == nil {
			continue
		}

		params := make(map[string]string, len(m.Params)+len(nested.Params))
		maps.Copy(params, m.Params)
		maps.Copy(params, nested.Params)

		handlers := make([]chain.Handler, 0, len(route.handlers)+len(nested.Handlers))
		handlers = append(handlers, route.handlers...)
		handlers = append(handlers, nested.Handlers...)

		return &Resolution{
			Route:     nested.Route,
			Handlers:  r.chainFor(handlers),
			Params:    params,
			Captures:  nested.Captures,
			Remainder: nested.Remainder,
		}
	}

	return nil
}

// chainFor prepends the router middleware to handlers in a fresh slice.
func (r *Router) chainFor(handlers []chain.Handler) []chain.Handler {
	out := make([]chain.Handler, 0, len(r.middleware)+len(handlers))
	out = append(out, r.middleware...)
	return append(out, handlers...)
}

// GetRoute returns a route by name.
func (r *Router) GetRoute(name string) (*Route, bool) {
	route, exists := r.routeMap[name]
	return route, exists
}

// GetRoutes returns all routes in registration order.
func (r *Router) GetRoutes() []*Route {
	routes := make([]*Route, len(r.routes))
	copy(routes, r.routes)
	return routes
}
