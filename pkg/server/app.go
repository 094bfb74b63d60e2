package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	streamer   *usecase.Streamer
	store      domrepo.Store
	sink       domrepo.EventSink
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	streamer *usecase.Streamer,
	store domrepo.Store,
	sink domrepo.EventSink,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		handler:  handler,
		streamer: streamer,
		store:    store,
		sink:     sink,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.logger, a.cfg.Server.SlowThreshold),
	)

	// Live stream updater; a no-op when streaming is disabled.
	if a.streamer != nil {
		go a.streamer.Run(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("store", string(a.store.Kind())),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.logger.Warn("sink close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("store close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
