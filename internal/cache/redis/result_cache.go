package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// ResultCache implements domain.ResultCache with JSON-serialized values.
//
// Key schema:
//
//	scan:merged             - last merged+evaluated dataset
//	scan:unmatched:{source} - last unmatched report per source
type ResultCache struct {
	rdb *redis.Client
}

// NewResultCache creates a ResultCache backed by the given Client.
func NewResultCache(c *Client) *ResultCache {
	return &ResultCache{rdb: c.Underlying()}
}

const mergedKey = "scan:merged"

func unmatchedKey(s domain.Source) string {
	return "scan:unmatched:" + string(s)
}

// SetMerged stores the latest merged dataset with the given TTL.
func (rc *ResultCache) SetMerged(ctx context.Context, data domain.MergedData, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("redis: marshal merged data: %w", err)
	}
	if err := rc.rdb.Set(ctx, mergedKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set merged data: %w", err)
	}
	return nil
}

// GetMerged retrieves the latest merged dataset. It returns
// domain.ErrNotFound when no scan has been cached yet.
func (rc *ResultCache) GetMerged(ctx context.Context) (domain.MergedData, error) {
	payload, err := rc.rdb.Get(ctx, mergedKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get merged data: %w", err)
	}

	var data domain.MergedData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("redis: unmarshal merged data: %w", err)
	}
	return data, nil
}

// SetUnmatched stores the latest unmatched report for one source.
func (rc *ResultCache) SetUnmatched(ctx context.Context, source domain.Source, report domain.UnmatchedReport, ttl time.Duration) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("redis: marshal unmatched report %s: %w", source, err)
	}
	if err := rc.rdb.Set(ctx, unmatchedKey(source), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set unmatched report %s: %w", source, err)
	}
	return nil
}

// GetUnmatched retrieves the latest unmatched report for one source. It
// returns domain.ErrNotFound when none has been cached.
func (rc *ResultCache) GetUnmatched(ctx context.Context, source domain.Source) (domain.UnmatchedReport, error) {
	payload, err := rc.rdb.Get(ctx, unmatchedKey(source)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.UnmatchedReport{}, domain.ErrNotFound
		}
		return domain.UnmatchedReport{}, fmt.Errorf("redis: get unmatched report %s: %w", source, err)
	}

	var report domain.UnmatchedReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.UnmatchedReport{}, fmt.Errorf("redis: unmarshal unmatched report %s: %w", source, err)
	}
	return report, nil
}

// Compile-time interface check.
var _ domain.ResultCache = (*ResultCache)(nil)
