package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// AlertCache implements domain.AlertCache using SETNX with a TTL. Each sent
// alert drops a key "alert:{league}|{teamA}|{teamB}|{score}" that Redis
// expires on its own, so a long-lived opportunity is re-notified exactly
// once per window rather than on every scan.
type AlertCache struct {
	rdb *redis.Client
}

// NewAlertCache creates an AlertCache backed by the given Client.
func NewAlertCache(c *Client) *AlertCache {
	return &AlertCache{rdb: c.Underlying()}
}

func alertKey(key string) string {
	return "alert:" + key
}

// MarkSent records that an alert for key is being sent. It returns true if
// no entry existed (send it) and false if a previous notification is still
// inside the TTL window.
func (ac *AlertCache) MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := ac.rdb.SetNX(ctx, alertKey(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: mark alert %s: %w", key, err)
	}
	return ok, nil
}

// Compile-time interface check.
var _ domain.AlertCache = (*AlertCache)(nil)
