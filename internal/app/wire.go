package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/alanyoungcy/boredraw/internal/blob/s3"
	"github.com/alanyoungcy/boredraw/internal/cache/redis"
	"github.com/alanyoungcy/boredraw/internal/config"
	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/normalize"
	"github.com/alanyoungcy/boredraw/internal/notify"
	"github.com/alanyoungcy/boredraw/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Stores
	GameStore     domain.GameStore
	AlertStore    domain.AlertStore
	SettingsStore domain.SettingsStore

	// Caches
	AlertCache  domain.AlertCache
	ResultCache domain.ResultCache

	// Blob storage (nil unless S3 is enabled)
	Archiver *s3blob.Archiver

	// League tables and notifications
	Leagues  *normalize.LeagueMap
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.GameStore = postgres.NewGameStore(pool)
	deps.AlertStore = postgres.NewAlertStore(pool)
	deps.SettingsStore = postgres.NewSettingsStore(pool)

	// Seed the settings row from config defaults on first run so the
	// dashboard always has something to show and edit.
	if err := seedSettings(ctx, deps.SettingsStore, cfg.Calc); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: seed settings: %w", err)
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.AlertCache = redis.NewAlertCache(redisClient)
	deps.ResultCache = redis.NewResultCache(redisClient)

	// --- S3 blob storage (optional cold-storage archive) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.GameStore)
	}

	// --- League tables ---
	deps.Leagues = buildLeagueMap(cfg.Leagues)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if url := webhookURL(ctx, deps.SettingsStore, cfg.Notify.WebhookURL); url != "" {
		senders = append(senders, notify.NewWebhookSender(url))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}

// seedSettings writes the config defaults into the settings store when no
// row exists yet. Stored settings always win afterwards.
func seedSettings(ctx context.Context, store domain.SettingsStore, calc config.CalcConfig) error {
	_, err := store.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return store.Put(ctx, domain.Settings{
		BackStake:          calc.BackStake,
		CommissionDiscount: calc.CommissionDiscount,
		Retention:          calc.Retention,
		UpdatedAt:          time.Now().UTC(),
	})
}

// webhookURL prefers the stored settings' webhook over the config value so a
// dashboard edit survives restarts without touching the TOML file.
func webhookURL(ctx context.Context, store domain.SettingsStore, fromConfig string) string {
	stored, err := store.Get(ctx)
	if err == nil && stored.WebhookURL != "" {
		return stored.WebhookURL
	}
	return fromConfig
}

// buildLeagueMap extends the built-in league tables with the configured
// extras.
func buildLeagueMap(cfg config.LeaguesConfig) *normalize.LeagueMap {
	lm := normalize.DefaultMap()

	for _, m := range cfg.ExtraMappings {
		lm.Mappings = append(lm.Mappings, normalize.Mapping{
			Bookie:   m.Bookie,
			Exchange: m.Exchange,
			Label:    m.Label,
		})
	}

	lm.Known[domain.SourceBookie] = append(lm.Known[domain.SourceBookie], cfg.IgnoreBookie...)
	lm.Known[domain.SourceExchange] = append(lm.Known[domain.SourceExchange], cfg.IgnoreExchange...)

	return lm
}
