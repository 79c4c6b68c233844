package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// SettingsStore implements domain.SettingsStore using PostgreSQL. Settings
// are a single row keyed by a constant; Put overwrites it.
type SettingsStore struct {
	pool *pgxpool.Pool
}

// NewSettingsStore creates a new SettingsStore backed by the given pool.
func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

// Get returns the stored settings, or domain.ErrNotFound if none have been
// saved yet.
func (s *SettingsStore) Get(ctx context.Context) (domain.Settings, error) {
	const query = `
		SELECT back_stake, commission_discount, retention, webhook_url, updated_at
		FROM settings
		WHERE singleton`

	var out domain.Settings
	err := s.pool.QueryRow(ctx, query).Scan(
		&out.BackStake, &out.CommissionDiscount, &out.Retention,
		&out.WebhookURL, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Settings{}, domain.ErrNotFound
		}
		return domain.Settings{}, fmt.Errorf("postgres: get settings: %w", err)
	}
	return out, nil
}

// Put saves the settings, replacing any previous value.
func (s *SettingsStore) Put(ctx context.Context, settings domain.Settings) error {
	const query = `
		INSERT INTO settings (
			singleton, back_stake, commission_discount, retention, webhook_url, updated_at
		) VALUES (
			TRUE, $1, $2, $3, $4, NOW()
		)
		ON CONFLICT (singleton) DO UPDATE SET
			back_stake          = EXCLUDED.back_stake,
			commission_discount = EXCLUDED.commission_discount,
			retention           = EXCLUDED.retention,
			webhook_url         = EXCLUDED.webhook_url,
			updated_at          = NOW()`

	_, err := s.pool.Exec(ctx, query,
		settings.BackStake, settings.CommissionDiscount,
		settings.Retention, settings.WebhookURL,
	)
	if err != nil {
		return fmt.Errorf("postgres: put settings: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SettingsStore = (*SettingsStore)(nil)
