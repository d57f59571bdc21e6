package main

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vyrodovalexey/avarouter/internal/config"
	"github.com/vyrodovalexey/avarouter/internal/gateway"
	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// Reload results used as the "result" label.
const (
	reloadSuccess = "success"
	reloadFailure = "failure"
)

// reload rebuilds the route table from cfg and swaps it in. Requests in
// flight finish on the old table. Listener, counter, tracing and rate
// limit settings only take effect on restart.
func (app *application) reload(cfg *config.Config) error {
	r, err := gateway.BuildRouter(cfg, app.dependencies())
	if err != nil {
		app.metrics.RecordReload(reloadFailure)
		return fmt.Errorf("failed to build route table: %w", err)
	}

	if err := app.dispatcher.Swap(r); err != nil {
		app.metrics.RecordReload(reloadFailure)
		return err
	}
	app.metrics.RecordReload(reloadSuccess)

	for _, section := range restartRequired(app.config, cfg) {
		app.logger.Warn("configuration change requires restart",
			observability.String("section", section),
		)
	}

	app.logger.Info("route table reloaded",
		observability.Int("routes", app.dispatcher.Routes()),
	)
	return nil
}

// restartRequired lists the sections of next that differ from current
// but are only read at startup.
func restartRequired(current, next *config.Config) []string {
	var sections []string
	if !reflect.DeepEqual(current.Server, next.Server) {
		sections = append(sections, "server")
	}
	if !reflect.DeepEqual(current.Metrics, next.Metrics) {
		sections = append(sections, "metrics")
	}
	if !reflect.DeepEqual(current.Tracing, next.Tracing) {
		sections = append(sections, "tracing")
	}
	if !reflect.DeepEqual(current.Counter, next.Counter) {
		sections = append(sections, "counter")
	}
	if !reflect.DeepEqual(current.RateLimit, next.RateLimit) {
		sections = append(sections, "rateLimit")
	}
	if !reflect.DeepEqual(current.Logging, next.Logging) {
		sections = append(sections, "logging")
	}
	return sections
}

// startConfigWatcher starts the configuration watcher. A watcher that
// cannot start is logged and the process keeps serving.
func startConfigWatcher(ctx context.Context, app *application, configPath string) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(cfg *config.Config) {
		if reloadErr := app.reload(cfg); reloadErr != nil {
			app.logger.Error("failed to reload configuration", observability.Error(reloadErr))
		}
	},
		config.WithLogger(app.logger),
		config.WithErrorCallback(func(error) {
			app.metrics.RecordReload(reloadFailure)
		}),
	)
	if err != nil {
		app.logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		app.logger.Warn("failed to start config watcher", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}

	return watcher
}
