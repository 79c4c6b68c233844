package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BOREDRAW_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BOREDRAW_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "BOREDRAW_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "BOREDRAW_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "BOREDRAW_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "BOREDRAW_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "BOREDRAW_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "BOREDRAW_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "BOREDRAW_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "BOREDRAW_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "BOREDRAW_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "BOREDRAW_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "BOREDRAW_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "BOREDRAW_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "BOREDRAW_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "BOREDRAW_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "BOREDRAW_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "BOREDRAW_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "BOREDRAW_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "BOREDRAW_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "BOREDRAW_S3_REGION")
	setStr(&cfg.S3.Bucket, "BOREDRAW_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "BOREDRAW_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "BOREDRAW_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "BOREDRAW_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "BOREDRAW_S3_FORCE_PATH_STYLE")

	// ── Scan ──
	setDuration(&cfg.Scan.Interval, "BOREDRAW_SCAN_INTERVAL")
	setDuration(&cfg.Scan.DedupWindow, "BOREDRAW_SCAN_DEDUP_WINDOW")
	setDuration(&cfg.Scan.ResultTTL, "BOREDRAW_SCAN_RESULT_TTL")
	setDuration(&cfg.Scan.StaleAfter, "BOREDRAW_SCAN_STALE_AFTER")
	setDuration(&cfg.Scan.PurgeInterval, "BOREDRAW_SCAN_PURGE_INTERVAL")
	setDuration(&cfg.Scan.PurgeAfter, "BOREDRAW_SCAN_PURGE_AFTER")
	setDuration(&cfg.Scan.ArchiveInterval, "BOREDRAW_SCAN_ARCHIVE_INTERVAL")
	setStr(&cfg.Scan.TestLeague, "BOREDRAW_SCAN_TEST_LEAGUE")

	// ── Calc ──
	setFloat64(&cfg.Calc.BackStake, "BOREDRAW_CALC_BACK_STAKE")
	setFloat64(&cfg.Calc.CommissionDiscount, "BOREDRAW_CALC_COMMISSION_DISCOUNT")
	setFloat64(&cfg.Calc.Retention, "BOREDRAW_CALC_RETENTION")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "BOREDRAW_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "BOREDRAW_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "BOREDRAW_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.IngestToken, "BOREDRAW_SERVER_INGEST_TOKEN")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "BOREDRAW_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "BOREDRAW_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.WebhookURL, "BOREDRAW_NOTIFY_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.Mode, "BOREDRAW_MODE")
	setStr(&cfg.LogLevel, "BOREDRAW_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
