// Package gateway is the HTTP boundary of avarouter.
//
// BuildRouter turns a validated configuration into a sealed route table.
// Dispatcher adapts net/http requests to the routing core: it resolves the
// request, runs the chain and supplies the default responses the core
// leaves to its caller. Server hosts a Dispatcher behind a gin engine and
// owns the listener lifecycle.
package gateway
