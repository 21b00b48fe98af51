package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "ingest"

[catalog]
source = "s3"
path = "catalog/bonds.csv"

[futures]
contract_size = 500.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "ingest" {
		t.Errorf("Mode = %q, want ingest", cfg.Mode)
	}
	if cfg.Catalog.Source != "s3" || cfg.Catalog.Path != "catalog/bonds.csv" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Futures.ContractSize != 500 {
		t.Errorf("ContractSize = %v, want 500", cfg.Futures.ContractSize)
	}
	// Untouched sections keep their defaults.
	if cfg.Futures.PointValue != 1000 {
		t.Errorf("PointValue = %v, want default 1000", cfg.Futures.PointValue)
	}
	if cfg.Sweep.Points != 21 {
		t.Errorf("Sweep.Points = %d, want default 21", cfg.Sweep.Points)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("INRHEDGE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("INRHEDGE_SERVER_API_KEY", "sekrit")
	t.Setenv("INRHEDGE_SWEEP_POINTS", "41")
	t.Setenv("INRHEDGE_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(writeConfig(t, ``))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Server.APIKey != "sekrit" {
		t.Errorf("Server.APIKey = %q", cfg.Server.APIKey)
	}
	if cfg.Sweep.Points != 41 {
		t.Errorf("Sweep.Points = %d, want 41", cfg.Sweep.Points)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate on defaults: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "fly"
	cfg.Catalog.Source = "ftp"
	cfg.Futures.ContractSize = -1
	cfg.Sweep.Points = 1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted a broken config")
	}
	for _, want := range []string{"mode", "source", "contract_size", "points"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "pg-secret"
	cfg.Redis.Password = "redis-secret"
	cfg.S3.SecretKey = "s3-secret"
	cfg.Server.APIKey = "api-secret"

	red := RedactedConfig(&cfg)

	for name, got := range map[string]string{
		"postgres password": red.Postgres.Password,
		"redis password":    red.Redis.Password,
		"s3 secret key":     red.S3.SecretKey,
		"server api key":    red.Server.APIKey,
	} {
		if got != "***" {
			t.Errorf("%s not redacted: %q", name, got)
		}
	}

	// The original is untouched.
	if cfg.Postgres.Password != "pg-secret" {
		t.Errorf("original mutated: %q", cfg.Postgres.Password)
	}
	// Empty secrets stay empty rather than becoming "***".
	if red.Postgres.DSN != "" {
		t.Errorf("empty DSN redacted to %q", red.Postgres.DSN)
	}
}
