// Package router provides request routing for avarouter.
//
// A Router is an ordered list of routes. Each route binds a method set
// and a path Pattern to an ordered handler chain. Resolution scans the
// routes in registration order and the first route whose method set
// applies and whose pattern matches wins. There is no specificity
// ranking: a broad pattern registered early shadows narrower patterns
// registered after it, so a catch-all must be registered last.
//
// # Patterns
//
//   - Exact: "/sloths" matches "/sloths" and "/sloths/"
//   - Prefix: "/img" matches "/img" and "/img/x/y", leaving "/x/y" as remainder
//   - Parameterized: "/:flavor/tea" binds params["flavor"]; a trailing
//     "(/*)?" or "/*" accepts zero or more extra segments
//   - Regex: positional captures only, no named params
//   - Any: "*" matches every path
//
// # Usage
//
//	r := router.New()
//	_ = r.Get("/sloths", slothsRule)
//	_ = r.Get("/kangaroos(/*)?", kangaroos)
//	_ = r.Mount("/img", images)
//	_ = r.All("*", lemurs)
//	r.Seal()
//
//	res, err := r.Resolve("GET", "/kangaroos/tree-kangaroos")
//	if errors.Is(err, util.ErrNoRouteMatch) {
//	    // default not found response
//	}
//
// A Router is built once and sealed before serving. Resolve takes no
// locks and is safe for concurrent use on a sealed Router.
package router
