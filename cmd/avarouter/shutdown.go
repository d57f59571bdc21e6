package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/avarouter/internal/config"
	"github.com/vyrodovalexey/avarouter/internal/observability"
)

// run starts the application and blocks until SIGINT or SIGTERM.
func run(cfg *config.Config, configPath string, watch bool, logger observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := app.start(ctx); err != nil {
		app.shutdown(nil)
		return err
	}

	var watcher *config.Watcher
	if watch {
		watcher = startConfigWatcher(ctx, app, configPath)
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")

	app.shutdown(watcher)
	return nil
}

// shutdown drains and stops every component in reverse start order.
func (app *application) shutdown(watcher *config.Watcher) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	app.health.SetDraining(true)

	if watcher != nil {
		_ = watcher.Stop()
	}

	if app.server.IsRunning() {
		if err := app.server.Stop(shutdownCtx); err != nil {
			app.logger.Error("failed to stop server gracefully", observability.Error(err))
		}
	}

	if app.adminServer != nil && app.adminServer.IsRunning() {
		if err := app.adminServer.Stop(shutdownCtx); err != nil {
			app.logger.Error("failed to stop admin server gracefully", observability.Error(err))
		}
	}

	app.close(shutdownCtx)

	app.logger.Info("avarouter stopped")
}
