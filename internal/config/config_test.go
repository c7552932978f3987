package config

import (
	"reflect"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "LOG_MODE", "DB_DRIVER", "DB_DSN", "DB_MAX_OPEN_CONNS",
		"BLOB_DRIVER", "BLOB_BASE_PATH", "REDIS_URL", "BUNDLE_CACHE_TTL", "CORS_ORIGINS",
		"CORS_ALLOW_CREDENTIALS", "REQUEST_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.Mode != ModeOffline {
		t.Errorf("Mode = %q, want offline", cfg.Mode)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.LogMode != "dev" {
		t.Errorf("LogMode = %q, want dev", cfg.LogMode)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.DBMaxOpenConns != 10 {
		t.Errorf("DBMaxOpenConns = %d, want 10", cfg.DBMaxOpenConns)
	}
	if cfg.BlobDriver != "none" {
		t.Errorf("BlobDriver = %q, want none", cfg.BlobDriver)
	}
	if cfg.BundleCacheTTL != 24*time.Hour {
		t.Errorf("BundleCacheTTL = %v, want 24h", cfg.BundleCacheTTL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.CORSAllowCredentials {
		t.Errorf("CORSAllowCredentials = true, want false")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("LOG_MODE", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("BLOB_DRIVER", "redis")
	t.Setenv("BUNDLE_CACHE_TTL", "90")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "yes")

	cfg := FromEnv()
	if cfg.Mode != ModeOnline || cfg.LogMode != "prod" {
		t.Errorf("Mode/LogMode = %q/%q, want online/prod", cfg.Mode, cfg.LogMode)
	}
	if cfg.DBDriver != "postgres" || cfg.DBMaxOpenConns != 25 {
		t.Errorf("DB = %q/%d", cfg.DBDriver, cfg.DBMaxOpenConns)
	}
	if cfg.BundleCacheTTL != 90*time.Second {
		t.Errorf("BundleCacheTTL = %v, want 90s", cfg.BundleCacheTTL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	if !cfg.CORSAllowCredentials {
		t.Errorf("CORSAllowCredentials = false, want true")
	}
}
