package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeDesk/internal/domain/models"
	"TradeDesk/internal/domain/repository"
	mid "TradeDesk/internal/middleware"
	"TradeDesk/internal/usecase"
	pkgch "TradeDesk/pkg/clickhouse"
	"TradeDesk/pkg/config"
	xhttp "TradeDesk/pkg/http"
	applogger "TradeDesk/pkg/logger"
)

// App encapsulates the application lifecycle: event pipeline, monitor
// and HTTP server, torn down in reverse order on shutdown.
type App struct {
	cfg      *config.Config
	logger   *applogger.Logger
	desk     *usecase.Desk
	monitor  *usecase.Monitor
	pipeline *mid.EventPipeline
	store    repository.DecisionStore
	server   *xhttp.Server
	chClient *pkgch.Client
}

// New assembles the app. monitor and chClient may be nil when disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	desk *usecase.Desk,
	monitor *usecase.Monitor,
	pipeline *mid.EventPipeline,
	store repository.DecisionStore,
	srv *xhttp.Server,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		desk:     desk,
		monitor:  monitor,
		pipeline: pipeline,
		store:    store,
		server:   srv,
		chClient: chClient,
	}
}

// Desk exposes the desk, for CLI commands that bypass the server.
func (a *App) Desk() *usecase.Desk { return a.desk }

// AnalyzeOnce runs a single session without the HTTP server: pipeline
// up, session through, everything torn down.
func (a *App) AnalyzeOnce(ctx context.Context, symbols []string) (*models.SessionResult, error) {
	a.pipeline.Start()
	result := a.desk.RunSession(ctx, symbols)

	if err := a.pipeline.Close(); err != nil {
		a.logger.Warn("event pipeline close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return result, nil
}

// Run starts every component and blocks until an interrupt arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.pipeline.Start()
	if a.monitor != nil {
		a.monitor.Start(ctx)
	}
	if err := a.server.Start(); err != nil {
		return err
	}
	a.logger.Info("application started",
		applogger.String("environment", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.Shutdown(ctx)
}

// Shutdown stops everything, best effort, in reverse start order.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown error", applogger.Error(err))
	}

	if a.monitor != nil {
		a.monitor.Stop()
	}
	if err := a.pipeline.Close(); err != nil {
		a.logger.Warn("event pipeline close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
