package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// GameStore implements domain.GameStore using PostgreSQL. Score lists are
// stored as JSONB since they are only ever read back whole.
type GameStore struct {
	pool *pgxpool.Pool
}

// NewGameStore creates a new GameStore backed by the given connection pool.
func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

const upsertGameQuery = `
	INSERT INTO games (
		source, url, league, team_a, team_b,
		match_time, scrape_time, scores, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, NOW()
	)
	ON CONFLICT (source, url) DO UPDATE SET
		league      = EXCLUDED.league,
		team_a      = EXCLUDED.team_a,
		team_b      = EXCLUDED.team_b,
		match_time  = EXCLUDED.match_time,
		scrape_time = EXCLUDED.scrape_time,
		scores      = EXCLUDED.scores,
		updated_at  = NOW()`

// Upsert inserts or replaces a single game snapshot.
func (s *GameStore) Upsert(ctx context.Context, source domain.Source, game domain.RawGame) error {
	scores, err := json.Marshal(game.Scores)
	if err != nil {
		return fmt.Errorf("postgres: marshal scores for %s: %w", game.URL, err)
	}

	_, err = s.pool.Exec(ctx, upsertGameQuery,
		string(source), game.URL, game.League, game.TeamA, game.TeamB,
		game.MatchTime, game.ScrapeTime, scores,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert game %s/%s: %w", source, game.URL, err)
	}
	return nil
}

// UpsertBatch inserts or replaces multiple game snapshots in a single batch.
func (s *GameStore) UpsertBatch(ctx context.Context, source domain.Source, games []domain.RawGame) error {
	if len(games) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, g := range games {
		scores, err := json.Marshal(g.Scores)
		if err != nil {
			return fmt.Errorf("postgres: marshal scores for %s: %w", g.URL, err)
		}
		batch.Queue(upsertGameQuery,
			string(source), g.URL, g.League, g.TeamA, g.TeamB,
			g.MatchTime, g.ScrapeTime, scores,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range games {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert game batch item %d: %w", i, err)
		}
	}
	return nil
}

// LoadSource returns every stored game for one source, grouped by league.
func (s *GameStore) LoadSource(ctx context.Context, source domain.Source) (domain.SourceData, error) {
	const query = `
		SELECT league, team_a, team_b, match_time, url, scrape_time, scores
		FROM games
		WHERE source = $1
		ORDER BY league, match_time NULLS LAST, url`

	rows, err := s.pool.Query(ctx, query, string(source))
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s games: %w", source, err)
	}
	defer rows.Close()

	data := domain.SourceData{}
	for rows.Next() {
		var g domain.RawGame
		var scores []byte
		if err := rows.Scan(
			&g.League, &g.TeamA, &g.TeamB, &g.MatchTime,
			&g.URL, &g.ScrapeTime, &scores,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan %s game: %w", source, err)
		}
		if err := json.Unmarshal(scores, &g.Scores); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal scores for %s: %w", g.URL, err)
		}
		data[g.League] = append(data[g.League], g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate %s games: %w", source, err)
	}
	return data, nil
}

// PurgeBefore deletes games whose kickoff is before the cutoff. Games whose
// kickoff is unknown are kept; they age out via re-scrape replacement.
func (s *GameStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM games WHERE match_time IS NOT NULL AND match_time < $1",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: purge games before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored games for one source.
func (s *GameStore) Count(ctx context.Context, source domain.Source) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM games WHERE source = $1",
		string(source),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count %s games: %w", source, err)
	}
	return count, nil
}

// LastScrape returns the most recent scrape time for one source. The zero
// time means nothing is stored yet.
func (s *GameStore) LastScrape(ctx context.Context, source domain.Source) (time.Time, error) {
	var last *time.Time
	err := s.pool.QueryRow(ctx,
		"SELECT MAX(scrape_time) FROM games WHERE source = $1",
		string(source),
	).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("postgres: last scrape %s: %w", source, err)
	}
	if last == nil {
		return time.Time{}, nil
	}
	return *last, nil
}

// Compile-time interface check.
var _ domain.GameStore = (*GameStore)(nil)
