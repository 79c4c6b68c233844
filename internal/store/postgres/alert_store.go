package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// AlertStore implements domain.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *pgxpool.Pool
}

// NewAlertStore creates a new AlertStore backed by the given connection pool.
func NewAlertStore(pool *pgxpool.Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Insert records one sent alert.
func (s *AlertStore) Insert(ctx context.Context, alert domain.Alert) error {
	const query = `
		INSERT INTO alerts (
			id, league, team_a, team_b, score,
			bookie_url, exchange_url,
			back_stake, lay_stake, bore_draw_lay_stake, profit,
			detected_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10, $11,
			$12
		)`

	_, err := s.pool.Exec(ctx, query,
		alert.ID, alert.League, alert.TeamA, alert.TeamB, alert.Score,
		alert.URLs[domain.SourceBookie], alert.URLs[domain.SourceExchange],
		alert.BackStake, alert.LayStake, alert.BoreDrawLayStake, alert.Profit,
		alert.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert alert %s: %w", alert.ID, err)
	}
	return nil
}

// ListRecent returns the most recent alerts, newest first.
func (s *AlertStore) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT id, league, team_a, team_b, score,
			bookie_url, exchange_url,
			back_stake, lay_stake, bore_draw_lay_stake, profit,
			detected_at
		FROM alerts
		ORDER BY detected_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var bookieURL, exchangeURL string
		if err := rows.Scan(
			&a.ID, &a.League, &a.TeamA, &a.TeamB, &a.Score,
			&bookieURL, &exchangeURL,
			&a.BackStake, &a.LayStake, &a.BoreDrawLayStake, &a.Profit,
			&a.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan alert: %w", err)
		}
		a.URLs = map[domain.Source]string{
			domain.SourceBookie:   bookieURL,
			domain.SourceExchange: exchangeURL,
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate alerts: %w", err)
	}
	return alerts, nil
}

// Compile-time interface check.
var _ domain.AlertStore = (*AlertStore)(nil)
