package domain

import (
	"context"
	"time"
)

// GameStore persists raw per-source game snapshots. Upsert is keyed on
// (source, url) so a re-scrape replaces the previous snapshot of the same
// game.
type GameStore interface {
	Upsert(ctx context.Context, source Source, game RawGame) error
	UpsertBatch(ctx context.Context, source Source, games []RawGame) error
	// LoadSource returns every stored game for one source grouped by the
	// source's league naming, the shape the reconciler consumes.
	LoadSource(ctx context.Context, source Source) (SourceData, error)
	// PurgeBefore deletes games whose kickoff is before the cutoff and
	// returns the number of rows removed. Games with no known kickoff are
	// kept.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context, source Source) (int64, error)
	// LastScrape returns the most recent scrape time for one source, or the
	// zero time when nothing is stored.
	LastScrape(ctx context.Context, source Source) (time.Time, error)
}

// AlertStore persists the history of notifications that were sent.
type AlertStore interface {
	Insert(ctx context.Context, alert Alert) error
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
}

// SettingsStore persists the runtime-tunable calculation settings.
type SettingsStore interface {
	Get(ctx context.Context) (Settings, error)
	Put(ctx context.Context, s Settings) error
}
