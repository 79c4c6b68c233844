package domain

import (
	"context"
	"time"
)

// AlertCache is the notification dedup window. MarkSent returns true when
// the key was not present (the caller should notify) and false when a
// notification for the same key is still inside the TTL window. Entries
// expire on their own; a long-lived opportunity is re-notified once the
// window lapses.
type AlertCache interface {
	MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ResultCache holds the most recent scan output so API reads do not force a
// recompute.
type ResultCache interface {
	SetMerged(ctx context.Context, data MergedData, ttl time.Duration) error
	GetMerged(ctx context.Context) (MergedData, error)
	SetUnmatched(ctx context.Context, source Source, report UnmatchedReport, ttl time.Duration) error
	GetUnmatched(ctx context.Context, source Source) (UnmatchedReport, error)
}
