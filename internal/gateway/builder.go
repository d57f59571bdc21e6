package gateway

import (
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/config"
	"github.com/vyrodovalexey/avarouter/internal/counter"
	"github.com/vyrodovalexey/avarouter/internal/middleware"
	"github.com/vyrodovalexey/avarouter/internal/observability"
	"github.com/vyrodovalexey/avarouter/internal/router"
)

// Dependencies are the collaborators configured handlers are built with.
// Only the ones referenced by the configuration are required.
type Dependencies struct {
	Logger      observability.Logger
	Metrics     *observability.Metrics
	Tracer      *observability.Tracer
	Counter     counter.Counter
	RateLimiter *middleware.RateLimiter
	// Regexes, when set, shares compiled route expressions between
	// builds and is swept after each successful one.
	Regexes *router.RegexSet
}

// BuildRouter builds a sealed router from cfg. Routes keep their
// configuration order; cfg.Middleware runs ahead of every route.
func BuildRouter(cfg *config.Config, deps Dependencies) (*router.Router, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if deps.Logger == nil {
		deps.Logger = observability.NopLogger()
	}

	b := &builder{deps: deps}

	root := router.New()
	mw, err := b.handlers("middleware", cfg.Middleware)
	if err != nil {
		return nil, err
	}
	if err := root.Use(mw...); err != nil {
		return nil, err
	}
	if err := b.addRoutes(root, "routes", cfg.Routes); err != nil {
		return nil, err
	}
	root.Seal()
	if deps.Regexes != nil {
		deps.Regexes.Sweep()
	}

	if deps.Metrics != nil {
		deps.Metrics.SetRoutes(b.routes)
	}
	deps.Logger.Debug("route table built",
		observability.Int("routes", b.routes),
		observability.Int("middleware", len(mw)),
	)

	return root, nil
}

type builder struct {
	deps   Dependencies
	routes int
}

func (b *builder) addRoutes(r *router.Router, path string, routes []config.RouteConfig) error {
	for i := range routes {
		rc := &routes[i]
		routePath := fmt.Sprintf("%s[%d]", path, i)

		handlers, err := b.handlers(routePath+".handlers", rc.Handlers)
		if err != nil {
			return err
		}

		if rc.IsMount() {
			sub := router.New()
			if err := b.addRoutes(sub, routePath+".routes", rc.Routes); err != nil {
				return err
			}
			if err := r.Mount(rc.Prefix, sub, handlers...); err != nil {
				return fmt.Errorf("%s: %w", routePath, err)
			}
			continue
		}

		p, err := b.pattern(rc)
		if err != nil {
			return fmt.Errorf("%s: %w", routePath, err)
		}
		if err := r.AddRoute(rc.Name, rc.Methods, p, handlers...); err != nil {
			return fmt.Errorf("%s: %w", routePath, err)
		}
		b.routes++
	}
	return nil
}

func (b *builder) pattern(rc *config.RouteConfig) (router.Pattern, error) {
	switch {
	case rc.Path != "":
		return router.ParsePattern(rc.Path)
	case rc.Prefix != "":
		return router.Prefix(rc.Prefix), nil
	case rc.Regex != "" && b.deps.Regexes != nil:
		return b.deps.Regexes.Regex(rc.Regex)
	case rc.Regex != "":
		return router.Regex(rc.Regex)
	default:
		return nil, fmt.Errorf("route has no path, prefix or regex")
	}
}

func (b *builder) handlers(path string, configs []config.HandlerConfig) ([]chain.Handler, error) {
	out := make([]chain.Handler, 0, len(configs))
	for i := range configs {
		h, err := b.handler(&configs[i])
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func (b *builder) handler(hc *config.HandlerConfig) (chain.Handler, error) {
	h, err := b.newHandler(hc)
	if err != nil {
		return nil, err
	}
	if hc.Name != "" {
		h = chain.Named(hc.Name, h)
	}
	return h, nil
}

//nolint:gocyclo // one case per handler type
func (b *builder) newHandler(hc *config.HandlerConfig) (chain.Handler, error) {
	switch hc.Type {
	case config.HandlerLogging:
		return middleware.Logging(b.deps.Logger), nil
	case config.HandlerRequestID:
		return middleware.RequestID(), nil
	case config.HandlerRecovery:
		return middleware.Recovery(b.deps.Logger), nil
	case config.HandlerTracing:
		if b.deps.Tracer == nil {
			return nil, fmt.Errorf("%w: tracing handler requires a tracer", ErrMissingDependency)
		}
		return middleware.Tracing(b.deps.Tracer), nil
	case config.HandlerMetrics:
		if b.deps.Metrics == nil {
			return nil, fmt.Errorf("%w: metrics handler requires metrics", ErrMissingDependency)
		}
		return middleware.Metrics(b.deps.Metrics), nil
	case config.HandlerRateLimit:
		if b.deps.RateLimiter == nil {
			return nil, fmt.Errorf("%w: rate_limit handler requires a rate limiter", ErrMissingDependency)
		}
		return middleware.RateLimit(b.deps.RateLimiter), nil
	case config.HandlerParseBody:
		return middleware.ParseBody(hc.MaxBytes), nil
	case config.HandlerStatic:
		return middleware.Static(hc.Root), nil
	case config.HandlerText:
		return middleware.Text(statusOrOK(hc.Status), hc.Body), nil
	case config.HandlerTemplate:
		return middleware.Template(hc.Format), nil
	case config.HandlerHTMLTemplate:
		return middleware.HTMLTemplate(hc.Format), nil
	case config.HandlerSetAttribute:
		return middleware.SetAttribute(hc.Key, hc.Value), nil
	case config.HandlerHitCounter:
		if b.deps.Counter == nil {
			return nil, fmt.Errorf("%w: hit_counter handler requires a counter", ErrMissingDependency)
		}
		return middleware.HitCounter(b.deps.Counter, hc.Format, b.deps.Metrics), nil
	case config.HandlerCountHits:
		if b.deps.Counter == nil {
			return nil, fmt.Errorf("%w: count_hits handler requires a counter", ErrMissingDependency)
		}
		return middleware.CountHits(b.deps.Counter, b.deps.Metrics), nil
	default:
		return nil, fmt.Errorf("unknown handler type %q", hc.Type)
	}
}

func statusOrOK(code int) int {
	if code == 0 {
		return http.StatusOK
	}
	return code
}
