// Package pipeline runs the scanner's background loops: the periodic scan
// over the stored snapshots, the purge of finished games, and the daily
// snapshot archive.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/boredraw/internal/blob/s3"
	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/service"
)

// Config holds the orchestrator's timing parameters.
type Config struct {
	// ScanInterval is the delay between scan passes.
	ScanInterval time.Duration
	// PurgeInterval is the delay between purge passes. Zero disables purging.
	PurgeInterval time.Duration
	// PurgeAfter keeps a game this long past its kickoff before purging it.
	PurgeAfter time.Duration
	// ArchiveInterval is the delay between snapshot archives. Zero disables
	// archiving (it is also disabled when no archiver is wired).
	ArchiveInterval time.Duration
}

// Orchestrator manages the scanner's long-running goroutines.
type Orchestrator struct {
	scanner  *service.ScanService
	games    domain.GameStore
	archiver *s3blob.Archiver
	cfg      Config
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator. archiver may be nil when cold
// storage is not configured.
func NewOrchestrator(
	scanner *service.ScanService,
	games domain.GameStore,
	archiver *s3blob.Archiver,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		scanner:  scanner,
		games:    games,
		archiver: archiver,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "orchestrator")),
	}
}

// Run starts the loops as concurrent goroutines using an errgroup. Each
// goroutine respects ctx cancellation. If any goroutine returns a
// non-context error, the errgroup cancels the shared context and Run
// returns that error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("orchestrator starting",
		slog.Duration("scan_interval", o.cfg.ScanInterval),
		slog.Duration("purge_interval", o.cfg.PurgeInterval),
		slog.Duration("archive_interval", o.cfg.ArchiveInterval),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := o.runScanLoop(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scan loop: %w", err)
	})

	if o.cfg.PurgeInterval > 0 {
		g.Go(func() error {
			err := o.runPurgeLoop(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("purge loop: %w", err)
		})
	}

	if o.archiver != nil && o.cfg.ArchiveInterval > 0 {
		g.Go(func() error {
			err := o.runArchiveLoop(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archive loop: %w", err)
		})
	}

	err := g.Wait()
	if err != nil {
		o.logger.Error("orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("orchestrator stopped cleanly")
	return nil
}

// runScanLoop runs one scan immediately, then one per tick. A failed scan
// is logged and retried on the next tick rather than stopping the loop.
func (o *Orchestrator) runScanLoop(ctx context.Context) error {
	o.scanOnce(ctx)

	ticker := time.NewTicker(o.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
			o.scanOnce(ctx)
		}
	}
}

func (o *Orchestrator) scanOnce(ctx context.Context) {
	if _, err := o.scanner.Scan(ctx); err != nil && ctx.Err() == nil {
		o.logger.Error("scan failed", slog.String("error", err.Error()))
	}
}

// runPurgeLoop removes games whose kickoff is further in the past than
// PurgeAfter.
func (o *Orchestrator) runPurgeLoop(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("purge loop stopped")
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-o.cfg.PurgeAfter)
			removed, err := o.games.PurgeBefore(ctx, cutoff)
			if err != nil {
				if ctx.Err() == nil {
					o.logger.Error("purge failed", slog.String("error", err.Error()))
				}
				continue
			}
			if removed > 0 {
				o.logger.Info("purged finished games", slog.Int64("removed", removed))
			}
		}
	}
}

// runArchiveLoop uploads the raw snapshots to cold storage once per tick.
func (o *Orchestrator) runArchiveLoop(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.ArchiveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("archive loop stopped")
			return ctx.Err()
		case <-ticker.C:
			count, err := o.archiver.ArchiveSnapshots(ctx, time.Now().UTC())
			if err != nil {
				if ctx.Err() == nil {
					o.logger.Error("archive failed", slog.String("error", err.Error()))
				}
				continue
			}
			o.logger.Info("snapshots archived", slog.Int64("games", count))
		}
	}
}
