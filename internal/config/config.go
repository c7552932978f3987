package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	LogMode  string // prod|dev
	SiteID   string // tags export events

	DBDriver       string // sqlite|postgres|memory
	DBDSN          string
	DBMaxOpenConns int

	BlobDriver     string // fs|redis|none
	BlobBasePath   string // for fs
	RedisURL       string // for redis
	BundleCacheTTL time.Duration

	CORSOrigins          []string
	CORSAllowCredentials bool
	RequestTimeout       time.Duration
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defLog := "dev"
	if mode == ModeOnline {
		defLog = "prod"
	}
	return Config{
		Mode:           mode,
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		LogMode:        envOr("LOG_MODE", defLog),
		SiteID:         envOr("SITE_ID", "local"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 10),
		BlobDriver:     envOr("BLOB_DRIVER", "none"),
		BlobBasePath:   envOr("BLOB_BASE_PATH", "./data"),
		RedisURL:       envOr("REDIS_URL", "redis://localhost:6379/0"),
		BundleCacheTTL: envDuration("BUNDLE_CACHE_TTL", 24*time.Hour),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),

		CORSAllowCredentials: envBool("CORS_ALLOW_CREDENTIALS", false),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare integers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
