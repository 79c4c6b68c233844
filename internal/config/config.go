// Package config defines the top-level configuration for the bore-draw
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by BOREDRAW_* environment variables.
type Config struct {
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Scan     ScanConfig     `toml:"scan"`
	Calc     CalcConfig     `toml:"calc"`
	Leagues  LeaguesConfig  `toml:"leagues"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archiving.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ScanConfig holds scan-loop timing parameters.
type ScanConfig struct {
	// Interval between scans over the stored snapshots.
	Interval duration `toml:"interval"`
	// DedupWindow suppresses repeat alerts for the same game+score.
	DedupWindow duration `toml:"dedup_window"`
	// ResultTTL is how long cached scan results stay servable.
	ResultTTL duration `toml:"result_ttl"`
	// StaleAfter marks a source snapshot stale in /api/health.
	StaleAfter duration `toml:"stale_after"`
	// PurgeInterval controls how often finished games are removed.
	PurgeInterval duration `toml:"purge_interval"`
	// PurgeAfter keeps a game this long past its kickoff before purging.
	PurgeAfter duration `toml:"purge_after"`
	// ArchiveInterval controls how often raw snapshots are archived to S3.
	ArchiveInterval duration `toml:"archive_interval"`
	// TestLeague names a league whose alerts are computed but never sent.
	TestLeague string `toml:"test_league"`
}

// CalcConfig holds the default calculation inputs. They seed the settings
// store on first run; after that the stored values win.
type CalcConfig struct {
	BackStake          float64 `toml:"back_stake"`
	CommissionDiscount float64 `toml:"commission_discount"`
	Retention          float64 `toml:"retention"`
}

// LeagueMapping pairs one bookie league name with its exchange counterpart.
// Label, when set, overrides the display name of the merged league.
type LeagueMapping struct {
	Bookie   string `toml:"bookie"`
	Exchange string `toml:"exchange"`
	Label    string `toml:"label"`
}

// LeaguesConfig extends the built-in league normalization tables.
type LeaguesConfig struct {
	// ExtraMappings are appended to the built-in cross-source league pairs.
	ExtraMappings []LeagueMapping `toml:"extra_mappings"`
	// IgnoreBookie / IgnoreExchange extend the known-unmatched lists: leagues
	// that only one source carries and that should not be reported.
	IgnoreBookie   []string `toml:"ignore_bookie"`
	IgnoreExchange []string `toml:"ignore_exchange"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// IngestToken, when set, is required as a Bearer token on POST /api/ingest.
	IngestToken string `toml:"ingest_token"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID string `toml:"telegram_chat_id"`
	WebhookURL     string `toml:"webhook_url"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "boredraw",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "boredraw-snapshots",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Scan: ScanConfig{
			Interval:        duration{time.Minute},
			DedupWindow:     duration{time.Hour},
			ResultTTL:       duration{10 * time.Minute},
			StaleAfter:      duration{15 * time.Minute},
			PurgeInterval:   duration{time.Hour},
			PurgeAfter:      duration{3 * time.Hour},
			ArchiveInterval: duration{24 * time.Hour},
			TestLeague:      "",
		},
		Calc: CalcConfig{
			BackStake:          50,
			CommissionDiscount: 0,
			Retention:          80,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":  true,
	"serve": true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, serve, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Scan timings
	if c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0")
	}
	if c.Scan.DedupWindow.Duration <= 0 {
		errs = append(errs, "scan: dedup_window must be > 0")
	}
	if c.Scan.ResultTTL.Duration <= 0 {
		errs = append(errs, "scan: result_ttl must be > 0")
	}
	if c.Scan.PurgeAfter.Duration < 0 {
		errs = append(errs, "scan: purge_after must be >= 0")
	}

	// Calc
	if c.Calc.BackStake <= 0 {
		errs = append(errs, "calc: back_stake must be > 0")
	}
	if c.Calc.CommissionDiscount < 0 || c.Calc.CommissionDiscount > 100 {
		errs = append(errs, fmt.Sprintf("calc: commission_discount must be 0-100, got %g", c.Calc.CommissionDiscount))
	}
	if c.Calc.Retention < 0 || c.Calc.Retention > 100 {
		errs = append(errs, fmt.Sprintf("calc: retention must be 0-100, got %g", c.Calc.Retention))
	}

	// Leagues
	for i, m := range c.Leagues.ExtraMappings {
		if m.Bookie == "" || m.Exchange == "" {
			errs = append(errs, fmt.Sprintf("leagues: extra_mappings[%d] must set both bookie and exchange", i))
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Notify — token and chat ID must be set together.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
