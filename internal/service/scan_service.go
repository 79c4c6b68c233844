// Package service contains the scan pipeline: load the two stored
// snapshots, reconcile them, size the hedge for every merged score, and
// fan detected opportunities out to the alert channels.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/boredraw/internal/arbitrage"
	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/notify"
	"github.com/alanyoungcy/boredraw/internal/reconcile"
)

// Broadcaster pushes an alert to live dashboard connections. The websocket
// hub implements it; a no-op implementation is fine for scan-only mode.
type Broadcaster interface {
	BroadcastAlert(alert domain.Alert)
}

// NopBroadcaster discards alerts.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastAlert(domain.Alert) {}

// ScanConfig holds the scan service's tunables.
type ScanConfig struct {
	// DedupWindow suppresses repeat notifications for the same game+score.
	DedupWindow time.Duration
	// ResultTTL bounds how long cached scan output stays servable.
	ResultTTL time.Duration
	// TestLeague names a league whose opportunities are evaluated and cached
	// but never notified. Empty disables the carve-out.
	TestLeague string
	// Defaults seed the calculation when no settings row exists yet.
	Defaults arbitrage.Params
}

// ScanResult summarizes one scan pass.
type ScanResult struct {
	Leagues    int
	Games      int
	Scores     int
	Arbable    int
	Notified   int
	Suppressed int
}

// ScanService runs the full snapshot-to-alert pass.
type ScanService struct {
	games       domain.GameStore
	alerts      domain.AlertStore
	settings    domain.SettingsStore
	alertCache  domain.AlertCache
	results     domain.ResultCache
	reconciler  *reconcile.Reconciler
	notifier    *notify.Notifier
	broadcaster Broadcaster
	cfg         ScanConfig
	logger      *slog.Logger
}

// NewScanService creates a ScanService with all required dependencies.
func NewScanService(
	games domain.GameStore,
	alerts domain.AlertStore,
	settings domain.SettingsStore,
	alertCache domain.AlertCache,
	results domain.ResultCache,
	reconciler *reconcile.Reconciler,
	notifier *notify.Notifier,
	broadcaster Broadcaster,
	cfg ScanConfig,
	logger *slog.Logger,
) *ScanService {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &ScanService{
		games:       games,
		alerts:      alerts,
		settings:    settings,
		alertCache:  alertCache,
		results:     results,
		reconciler:  reconciler,
		notifier:    notifier,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "scan_service")),
	}
}

// Params returns the current calculation inputs: the stored settings when
// present, the configured defaults otherwise.
func (s *ScanService) Params(ctx context.Context) (arbitrage.Params, error) {
	stored, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.cfg.Defaults, nil
		}
		return arbitrage.Params{}, fmt.Errorf("scan_service: load settings: %w", err)
	}
	return arbitrage.Params{
		Stake:              stored.BackStake,
		CommissionDiscount: stored.CommissionDiscount,
		Retention:          stored.Retention,
	}, nil
}

// Scan runs one full pass: load both snapshots, reconcile, evaluate, cache
// the results, and notify newly detected opportunities. Notification
// failures are logged but do not fail the scan; the cached results and
// stored alerts are the source of truth.
func (s *ScanService) Scan(ctx context.Context) (ScanResult, error) {
	var result ScanResult

	params, err := s.Params(ctx)
	if err != nil {
		return result, err
	}

	bookie, err := s.games.LoadSource(ctx, domain.SourceBookie)
	if err != nil {
		return result, fmt.Errorf("scan_service: load bookie snapshot: %w", err)
	}
	exchange, err := s.games.LoadSource(ctx, domain.SourceExchange)
	if err != nil {
		return result, fmt.Errorf("scan_service: load exchange snapshot: %w", err)
	}

	merged := s.reconciler.Reconcile(bookie, exchange)
	evaluated := arbitrage.Evaluate(merged, params)

	for league, games := range evaluated {
		result.Leagues++
		result.Games += len(games)
		for _, game := range games {
			for _, score := range game.Scores {
				result.Scores++
				if !score.Arbable {
					continue
				}
				result.Arbable++

				alert := buildAlert(game, score, params.Stake)
				sent, err := s.dispatch(ctx, league, alert)
				if err != nil {
					s.logger.ErrorContext(ctx, "alert dispatch failed",
						slog.String("alert", alert.Key()),
						slog.String("error", err.Error()),
					)
					continue
				}
				if sent {
					result.Notified++
				} else {
					result.Suppressed++
				}
			}
		}
	}

	if err := s.results.SetMerged(ctx, evaluated, s.cfg.ResultTTL); err != nil {
		s.logger.WarnContext(ctx, "cache merged results failed", slog.String("error", err.Error()))
	}
	for _, pair := range []struct {
		source      domain.Source
		from, other domain.SourceData
	}{
		{domain.SourceBookie, bookie, exchange},
		{domain.SourceExchange, exchange, bookie},
	} {
		report := s.reconciler.Unmatched(pair.source, pair.from, pair.other)
		if err := s.results.SetUnmatched(ctx, pair.source, report, s.cfg.ResultTTL); err != nil {
			s.logger.WarnContext(ctx, "cache unmatched report failed",
				slog.String("source", string(pair.source)),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "scan complete",
		slog.Int("leagues", result.Leagues),
		slog.Int("games", result.Games),
		slog.Int("scores", result.Scores),
		slog.Int("arbable", result.Arbable),
		slog.Int("notified", result.Notified),
		slog.Int("suppressed", result.Suppressed),
	)
	return result, nil
}

// dispatch handles one arbable score: dedup, persist, notify, broadcast.
// It returns true when the alert was actually sent and false when the dedup
// window or the test-league carve-out suppressed it.
func (s *ScanService) dispatch(ctx context.Context, league string, alert domain.Alert) (bool, error) {
	if s.cfg.TestLeague != "" && league == s.cfg.TestLeague {
		s.logger.DebugContext(ctx, "test league alert suppressed", slog.String("alert", alert.Key()))
		return false, nil
	}

	fresh, err := s.alertCache.MarkSent(ctx, alert.Key(), s.cfg.DedupWindow)
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if !fresh {
		return false, nil
	}

	if err := s.alerts.Insert(ctx, alert); err != nil {
		return false, fmt.Errorf("persist alert: %w", err)
	}

	if s.notifier.Enabled() {
		if err := s.notifier.Notify(ctx, alert); err != nil {
			// Already logged per-sender; the alert is recorded regardless.
			s.logger.WarnContext(ctx, "notification incomplete",
				slog.String("alert", alert.Key()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.broadcaster.BroadcastAlert(alert)

	s.logger.InfoContext(ctx, "opportunity detected",
		slog.String("league", alert.League),
		slog.String("team_a", alert.TeamA),
		slog.String("team_b", alert.TeamB),
		slog.String("score", alert.Score),
		slog.Float64("profit", alert.Profit),
	)
	return true, nil
}

func buildAlert(game domain.MergedGame, score domain.MergedScore, stake float64) domain.Alert {
	profit := 0.0
	if score.Outcomes != nil {
		profit = score.Outcomes.Min()
	}

	urls := make(map[domain.Source]string, len(game.URLs))
	for src, u := range game.URLs {
		urls[src] = u
	}

	return domain.Alert{
		ID:               uuid.NewString(),
		League:           game.League,
		TeamA:            game.TeamA,
		TeamB:            game.TeamB,
		Score:            score.Score,
		URLs:             urls,
		BackStake:        stake,
		LayStake:         score.LayStake,
		BoreDrawLayStake: score.BoreDrawLayStake,
		Profit:           profit,
		DetectedAt:       time.Now().UTC(),
	}
}

// Merged serves the cached merged view, falling back to a fresh scan pass
// over the stores when the cache is cold. The fallback does not notify.
func (s *ScanService) Merged(ctx context.Context) (domain.MergedData, error) {
	cached, err := s.results.GetMerged(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "merged cache read failed", slog.String("error", err.Error()))
	}

	params, err := s.Params(ctx)
	if err != nil {
		return nil, err
	}
	bookie, err := s.games.LoadSource(ctx, domain.SourceBookie)
	if err != nil {
		return nil, fmt.Errorf("scan_service: load bookie snapshot: %w", err)
	}
	exchange, err := s.games.LoadSource(ctx, domain.SourceExchange)
	if err != nil {
		return nil, fmt.Errorf("scan_service: load exchange snapshot: %w", err)
	}
	return arbitrage.Evaluate(s.reconciler.Reconcile(bookie, exchange), params), nil
}

// Unmatched serves the cached unmatched report for one source, recomputing
// from the stores when the cache is cold.
func (s *ScanService) Unmatched(ctx context.Context, source domain.Source) (domain.UnmatchedReport, error) {
	if !source.Valid() {
		return domain.UnmatchedReport{}, domain.ErrUnknownSource
	}

	cached, err := s.results.GetUnmatched(ctx, source)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "unmatched cache read failed",
			slog.String("source", string(source)),
			slog.String("error", err.Error()),
		)
	}

	from, err := s.games.LoadSource(ctx, source)
	if err != nil {
		return domain.UnmatchedReport{}, fmt.Errorf("scan_service: load %s snapshot: %w", source, err)
	}
	other, err := s.games.LoadSource(ctx, source.Other())
	if err != nil {
		return domain.UnmatchedReport{}, fmt.Errorf("scan_service: load %s snapshot: %w", source.Other(), err)
	}
	return s.reconciler.Unmatched(source, from, other), nil
}
