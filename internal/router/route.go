package router

import (
	"slices"
	"sort"
	"strings"

	"github.com/vyrodovalexey/avarouter/internal/chain"
)

// MethodAny is the wildcard method.
const MethodAny = "*"

// MethodSet is the set of HTTP methods a route answers to.
type MethodSet struct {
	methods map[string]bool
}

// NewMethodSet creates a method set. No methods means any method.
func NewMethodSet(methods ...string) MethodSet {
	s := MethodSet{methods: make(map[string]bool, len(methods))}
	for _, method := range methods {
		s.methods[strings.ToUpper(method)] = true
	}
	if len(s.methods) == 0 {
		s.methods[MethodAny] = true
	}
	return s
}

// Contains reports whether the set holds the method or the wildcard.
func (s MethodSet) Contains(method string) bool {
	if s.methods[MethodAny] {
		return true
	}
	return s.methods[strings.ToUpper(method)]
}

// IsAny reports whether the set matches every method.
func (s MethodSet) IsAny() bool {
	return s.methods[MethodAny]
}

// Methods returns the methods in sorted order.
func (s MethodSet) Methods() []string {
	out := make([]string, 0, len(s.methods))
	for m := range s.methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (s MethodSet) String() string {
	return strings.Join(s.Methods(), ",")
}

// Route binds a method set and a pattern to an ordered handler chain.
// A route never changes after registration.
type Route struct {
	name     string
	methods  MethodSet
	pattern  Pattern
	handlers []chain.Handler
	sub      *Router
}

// Name returns the route name.
func (r *Route) Name() string { return r.name }

// Pattern returns the route pattern.
func (r *Route) Pattern() Pattern { return r.pattern }

// Methods returns the route method set.
func (r *Route) Methods() MethodSet { return r.methods }

// Handlers returns a copy of the route's handler chain.
func (r *Route) Handlers() []chain.Handler { return slices.Clone(r.handlers) }

// Mounted returns the sub-router of a mount route, or nil.
func (r *Route) Mounted() *Router { return r.sub }

// Applies reports whether the route accepts the request method.
func (r *Route) Applies(method string) bool {
	return r.methods.Contains(method)
}

func defaultRouteName(methods MethodSet, p Pattern) string {
	return methods.String() + " " + p.String()
}
