package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies INRHEDGE_* environment variable overrides, and
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

// applyEnvOverrides reads well-known INRHEDGE_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "INRHEDGE_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "INRHEDGE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "INRHEDGE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "INRHEDGE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "INRHEDGE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "INRHEDGE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "INRHEDGE_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "INRHEDGE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "INRHEDGE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "INRHEDGE_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "INRHEDGE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "INRHEDGE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "INRHEDGE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "INRHEDGE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "INRHEDGE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "INRHEDGE_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.RateTTLMinutes, "INRHEDGE_REDIS_RATE_TTL_MINUTES")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "INRHEDGE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "INRHEDGE_S3_REGION")
	setStr(&cfg.S3.Bucket, "INRHEDGE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "INRHEDGE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "INRHEDGE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "INRHEDGE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "INRHEDGE_S3_FORCE_PATH_STYLE")

	// ── Catalog ──
	setStr(&cfg.Catalog.Source, "INRHEDGE_CATALOG_SOURCE")
	setStr(&cfg.Catalog.Path, "INRHEDGE_CATALOG_PATH")

	// ── Futures ──
	setFloat64(&cfg.Futures.ContractSize, "INRHEDGE_FUTURES_CONTRACT_SIZE")
	setFloat64(&cfg.Futures.PointValue, "INRHEDGE_FUTURES_POINT_VALUE")

	// ── Sweep ──
	setFloat64(&cfg.Sweep.Band, "INRHEDGE_SWEEP_BAND")
	setInt(&cfg.Sweep.Points, "INRHEDGE_SWEEP_POINTS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "INRHEDGE_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "INRHEDGE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "INRHEDGE_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "INRHEDGE_SERVER_API_KEY")

	// ── Archive ──
	setInt(&cfg.Archive.RetentionDays, "INRHEDGE_ARCHIVE_RETENTION_DAYS")

	// ── Top-level ──
	setStr(&cfg.Mode, "INRHEDGE_MODE")
	setStr(&cfg.LogLevel, "INRHEDGE_LOG_LEVEL")
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
