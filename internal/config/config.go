// Package config defines the top-level configuration for the inrhedge
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by INRHEDGE_* environment
// variables.
type Config struct {
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Futures  FuturesConfig  `toml:"futures"`
	Sweep    SweepConfig    `toml:"sweep"`
	Server   ServerConfig   `toml:"server"`
	Archive  ArchiveConfig  `toml:"archive"`
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
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	PoolSize       int    `toml:"pool_size"`
	MaxRetries     int    `toml:"max_retries"`
	TLSEnabled     bool   `toml:"tls_enabled"`
	RateTTLMinutes int    `toml:"rate_ttl_minutes"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// CatalogConfig describes where the bond sheet is ingested from.
type CatalogConfig struct {
	// Source is "file" for a local CSV or "s3" for an object in the
	// configured bucket.
	Source string `toml:"source"`
	// Path is the local file path or the S3 object key.
	Path string `toml:"path"`
}

// FuturesConfig holds the USDINR futures contract specification.
type FuturesConfig struct {
	// ContractSize is the USD notional per contract.
	ContractSize float64 `toml:"contract_size"`
	// PointValue is the INR P&L per 1.0 rate move per contract.
	PointValue float64 `toml:"point_value"`
}

// SweepConfig holds the rate-sensitivity sweep parameters.
type SweepConfig struct {
	// Band is the symmetric relative band around the entry rate (0.20 = ±20%).
	Band float64 `toml:"band"`
	// Points is the number of evenly spaced samples across the band.
	Points int `toml:"points"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// ArchiveConfig controls cold-storage archival of old scenario results.
type ArchiveConfig struct {
	// RetentionDays is how long evaluated results stay in Postgres before
	// the archive mode moves them to S3.
	RetentionDays int `toml:"retention_days"`
}

// Defaults returns the built-in configuration that Load merges the TOML file
// on top of. The futures defaults match the exchange-standard USDINR
// contract; the sweep defaults put the entry rate at the curve midpoint.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "inrhedge",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			DB:             0,
			PoolSize:       20,
			MaxRetries:     3,
			RateTTLMinutes: 15,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "inrhedge-data",
			ForcePathStyle: true,
		},
		Catalog: CatalogConfig{
			Source: "file",
			Path:   "bonds.csv",
		},
		Futures: FuturesConfig{
			ContractSize: 1000,
			PointValue:   1000,
		},
		Sweep: SweepConfig{
			Band:   0.20,
			Points: 21,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		Archive: ArchiveConfig{
			RetentionDays: 90,
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

var validModes = map[string]bool{
	"serve":   true,
	"ingest":  true,
	"archive": true,
	"full":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for internal consistency and returns a
// single error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, ingest, archive, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	switch strings.ToLower(c.Catalog.Source) {
	case "file", "s3":
	default:
		errs = append(errs, fmt.Sprintf("catalog: unknown source %q (valid: file, s3)", c.Catalog.Source))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, "catalog: path must not be empty")
	}

	if c.Futures.ContractSize <= 0 {
		errs = append(errs, fmt.Sprintf("futures: contract_size must be positive, got %v", c.Futures.ContractSize))
	}
	if c.Futures.PointValue <= 0 {
		errs = append(errs, fmt.Sprintf("futures: point_value must be positive, got %v", c.Futures.PointValue))
	}

	if c.Sweep.Band <= 0 || c.Sweep.Band >= 1 {
		errs = append(errs, fmt.Sprintf("sweep: band must be in (0, 1), got %v", c.Sweep.Band))
	}
	if c.Sweep.Points < 2 {
		errs = append(errs, fmt.Sprintf("sweep: points must be at least 2, got %d", c.Sweep.Points))
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port must be in (0, 65535], got %d", c.Server.Port))
	}

	if c.Archive.RetentionDays <= 0 {
		errs = append(errs, fmt.Sprintf("archive: retention_days must be positive, got %d", c.Archive.RetentionDays))
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
