package main

import (
	"context"
	"fmt"

	"github.com/vyrodovalexey/avarouter/internal/config"
	"github.com/vyrodovalexey/avarouter/internal/counter"
	"github.com/vyrodovalexey/avarouter/internal/gateway"
	"github.com/vyrodovalexey/avarouter/internal/health"
	"github.com/vyrodovalexey/avarouter/internal/middleware"
	"github.com/vyrodovalexey/avarouter/internal/observability"
	"github.com/vyrodovalexey/avarouter/internal/router"
)

// application holds all application components.
type application struct {
	config      *config.Config
	logger      observability.Logger
	metrics     *observability.Metrics
	tracer      *observability.Tracer
	counter     counter.Counter
	rateLimiter *middleware.RateLimiter
	regexes     *router.RegexSet
	dispatcher  *gateway.Dispatcher
	health      *health.Checker
	server      *gateway.Server
	adminServer *gateway.Server
}

// newApplication wires every component from cfg without starting
// listeners.
func newApplication(ctx context.Context, cfg *config.Config, logger observability.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: observability.NewMetrics(cfg.Metrics.Namespace),
		health:  health.NewChecker(version, logger),
		regexes: router.NewRegexSet(),
	}
	app.metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := newTracer(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	app.tracer = tracer

	hits, err := newCounter(ctx, cfg.Counter, logger)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("failed to initialize hit counter: %w", err)
	}
	app.counter = hits

	app.rateLimiter = newRateLimiter(cfg.RateLimit, logger, app.metrics)

	r, err := gateway.BuildRouter(cfg, app.dependencies())
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}

	app.dispatcher, err = gateway.NewDispatcher(r,
		gateway.WithDispatcherLogger(logger),
		gateway.WithDispatcherMetrics(app.metrics),
	)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	app.health.RegisterCheck("routes", health.RoutesCheck(app.dispatcher.Routes))
	app.health.RegisterCheck("counter", health.CounterCheck(app.counter))

	app.server = gateway.NewServer(cfg.Server.Address, gateway.NewEngine(app.dispatcher),
		gateway.WithName("http"),
		gateway.WithLogger(logger),
		gateway.WithTimeouts(cfg.Server.ReadTimeout.Duration(), cfg.Server.WriteTimeout.Duration()),
		gateway.WithShutdownTimeout(cfg.Server.ShutdownTimeout.Duration()),
	)

	if cfg.Metrics.Enabled {
		app.adminServer = gateway.NewServer(cfg.Metrics.Address,
			gateway.NewAdminEngine(cfg.Metrics.Path, app.metrics.Handler(), app.health),
			gateway.WithName("admin"),
			gateway.WithLogger(logger),
		)
	}

	return app, nil
}

// dependencies returns the collaborators handed to the route builder.
func (app *application) dependencies() gateway.Dependencies {
	return gateway.Dependencies{
		Logger:      app.logger,
		Metrics:     app.metrics,
		Tracer:      app.tracer,
		Counter:     app.counter,
		RateLimiter: app.rateLimiter,
		Regexes:     app.regexes,
	}
}

// newTracer initializes the tracer. A disabled tracer still backs the
// tracing handler with a no-op provider.
func newTracer(cfg config.TracingConfig) (*observability.Tracer, error) {
	return observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.SamplingRate,
		Enabled:      cfg.Enabled,
	})
}

// newCounter creates the configured hit counter backend.
func newCounter(ctx context.Context, cfg config.CounterConfig, logger observability.Logger) (counter.Counter, error) {
	switch cfg.Backend {
	case config.CounterRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis counter requires redis settings")
		}
		redisCfg := counter.DefaultRedisConfig()
		redisCfg.Address = cfg.Redis.Address
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.Start = cfg.Start
		redisCfg.Logger = logger
		if cfg.Redis.Key != "" {
			redisCfg.Key = cfg.Redis.Key
		}
		if d := cfg.Redis.DialTimeout.Duration(); d > 0 {
			redisCfg.DialTimeout = d
		}
		hits, err := counter.NewRedis(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return counter.NewBreaker(hits,
			cfg.Redis.BreakerThreshold,
			cfg.Redis.BreakerTimeout.Duration(),
			counter.WithBreakerLogger(logger),
		), nil
	default:
		return counter.NewMemory(cfg.Start), nil
	}
}

// newRateLimiter creates the shared limiter, or nil when disabled.
func newRateLimiter(
	cfg *config.RateLimitConfig,
	logger observability.Logger,
	metrics *observability.Metrics,
) *middleware.RateLimiter {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	opts := []middleware.RateLimiterOption{
		middleware.WithRateLimiterLogger(logger),
		middleware.WithRateLimiterMetrics(metrics),
		middleware.WithClientTTL(cfg.ClientTTL.Duration()),
	}
	if cfg.KeyHeader != "" {
		opts = append(opts, middleware.WithKeyFunc(middleware.HeaderKey(cfg.KeyHeader)))
	}

	rl := middleware.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, opts...)
	rl.StartAutoCleanup()
	return rl
}

// start starts the admin listener, then the request listener.
func (app *application) start(ctx context.Context) error {
	if app.adminServer != nil {
		if err := app.adminServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start admin server: %w", err)
		}
	}
	if err := app.server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// close releases components that own goroutines or connections.
func (app *application) close(ctx context.Context) {
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}
	if app.counter != nil {
		if err := app.counter.Close(); err != nil {
			app.logger.Error("failed to close hit counter", observability.Error(err))
		}
	}
	if app.tracer != nil {
		if err := app.tracer.Shutdown(ctx); err != nil {
			app.logger.Error("failed to shutdown tracer", observability.Error(err))
		}
	}
}
