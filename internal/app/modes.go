package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/boredraw/internal/arbitrage"
	"github.com/alanyoungcy/boredraw/internal/config"
	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/ingest"
	"github.com/alanyoungcy/boredraw/internal/pipeline"
	"github.com/alanyoungcy/boredraw/internal/reconcile"
	"github.com/alanyoungcy/boredraw/internal/server"
	"github.com/alanyoungcy/boredraw/internal/server/handler"
	"github.com/alanyoungcy/boredraw/internal/server/ws"
	"github.com/alanyoungcy/boredraw/internal/service"
)

// shutdownTimeout bounds the HTTP server's graceful drain on exit.
const shutdownTimeout = 10 * time.Second

// buildServices constructs the scan and ingest services from wired
// dependencies. broadcaster pushes newly detected alerts to WebSocket
// clients; pass service.NopBroadcaster{} in headless modes.
func (a *App) buildServices(deps *Dependencies, broadcaster service.Broadcaster) (*service.ScanService, *service.IngestService) {
	reconciler := reconcile.New(deps.Leagues, reconcile.DefaultPolicy(), a.logger)

	scanCfg := service.ScanConfig{
		DedupWindow: a.cfg.Scan.DedupWindow.Duration,
		ResultTTL:   a.cfg.Scan.ResultTTL.Duration,
		TestLeague:  a.cfg.Scan.TestLeague,
		Defaults: arbitrage.Params{
			Stake:              a.cfg.Calc.BackStake,
			CommissionDiscount: a.cfg.Calc.CommissionDiscount,
			Retention:          a.cfg.Calc.Retention,
		},
	}

	scanner := service.NewScanService(
		deps.GameStore,
		deps.AlertStore,
		deps.SettingsStore,
		deps.AlertCache,
		deps.ResultCache,
		reconciler,
		deps.Notifier,
		broadcaster,
		scanCfg,
		a.logger,
	)

	ingestor := ingest.New(deps.Leagues, a.logger)
	ingests := service.NewIngestService(deps.GameStore, ingestor, a.logger)

	return scanner, ingests
}

// buildOrchestrator constructs the background-loop orchestrator for the
// given scan service.
func (a *App) buildOrchestrator(deps *Dependencies, scanner *service.ScanService) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(
		scanner,
		deps.GameStore,
		deps.Archiver,
		pipeline.Config{
			ScanInterval:    a.cfg.Scan.Interval.Duration,
			PurgeInterval:   a.cfg.Scan.PurgeInterval.Duration,
			PurgeAfter:      a.cfg.Scan.PurgeAfter.Duration,
			ArchiveInterval: a.cfg.Scan.ArchiveInterval.Duration,
		},
		a.logger,
	)
}

// defaultSettings maps the config calculation defaults into the settings
// shape the API serves when no row has been stored.
func defaultSettings(calc config.CalcConfig) domain.Settings {
	return domain.Settings{
		BackStake:          calc.BackStake,
		CommissionDiscount: calc.CommissionDiscount,
		Retention:          calc.Retention,
	}
}

// startHTTPServer creates the API server and runs it under the errgroup,
// shutting it down gracefully when ctx is cancelled.
func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	scanner *service.ScanService,
	ingests *service.IngestService,
	hub *ws.Hub,
) {
	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(deps.GameStore, a.cfg.Scan.StaleAfter.Duration, a.logger),
		Games:     handler.NewGamesHandler(scanner, a.logger),
		Unmatched: handler.NewUnmatchedHandler(scanner, a.logger),
		Alerts:    handler.NewAlertsHandler(deps.AlertStore, a.logger),
		Settings:  handler.NewSettingsHandler(deps.SettingsStore, defaultSettings(a.cfg.Calc), a.logger),
		Ingest:    handler.NewIngestHandler(ingests, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		IngestToken: a.cfg.Server.IngestToken,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// ScanMode runs the background loops without the HTTP API. Alerts still go
// out through the configured notification channels.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info("running in scan mode")

	scanner, _ := a.buildServices(deps, service.NopBroadcaster{})
	orch := a.buildOrchestrator(deps, scanner)

	if err := orch.Run(ctx); err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}
	return nil
}

// ServeMode runs the HTTP + WebSocket API without the background loops.
// Scans only happen on demand when cached results have expired.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info("running in serve mode")

	hub := ws.NewHub("serve", a.logger)
	scanner, ingests := a.buildServices(deps, hub)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return err
	})
	a.startHTTPServer(ctx, g, deps, scanner, ingests, hub)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve mode: %w", err)
	}
	return nil
}

// FullMode runs everything: background loops plus the HTTP + WebSocket API.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.Info("running in full mode")

	hub := ws.NewHub("full", a.logger)
	scanner, ingests := a.buildServices(deps, hub)
	orch := a.buildOrchestrator(deps, scanner)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return err
	})
	g.Go(func() error {
		return orch.Run(ctx)
	})
	a.startHTTPServer(ctx, g, deps, scanner, ingests, hub)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("full mode: %w", err)
	}
	return nil
}
