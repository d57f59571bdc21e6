package health

import (
	"context"
	"fmt"

	"github.com/vyrodovalexey/avarouter/internal/counter"
)

// CounterCheck reports whether the hit counter backend answers. A
// failing counter only breaks hit routes, so it degrades readiness.
func CounterCheck(c counter.Counter) CheckFunc {
	return func(ctx context.Context) Check {
		if _, err := c.Value(ctx); err != nil {
			return Check{Status: StatusDegraded, Message: fmt.Sprintf("counter unavailable: %v", err)}
		}
		return Check{Status: StatusHealthy}
	}
}

// RoutesCheck reports unhealthy until a route table is loaded. count
// returns the number of routes in the active table.
func RoutesCheck(count func() int) CheckFunc {
	return func(context.Context) Check {
		n := count()
		if n == 0 {
			return Check{Status: StatusUnhealthy, Message: "no routes loaded"}
		}
		return Check{Status: StatusHealthy, Message: fmt.Sprintf("%d routes", n)}
	}
}
