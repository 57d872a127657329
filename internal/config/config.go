package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"codex-ledger/internal/logger"

	"go.uber.org/zap"
)

const (
	LedgerREST     = "rest"
	LedgerPostgres = "postgres"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port string

	SupabaseURL    string
	SupabaseKey    string
	LedgerBackend  string
	DatabaseURL    string
	CodexSecretSet bool

	CacheBackend    string
	RedisURL        string
	CacheTTL        time.Duration
	CacheMaxEntries int

	FetchTimeout    time.Duration
	FetchMaxRetries int
	FetchBaseDelay  time.Duration

	CoinGeckoBaseURL   string
	DexScreenerBaseURL string

	TracingEnabled bool
	OTLPEndpoint   string
}

// LedgerConfigured reports whether the selected ledger backend has the
// settings it needs. Requests fail per call when it does not.
func (c *Config) LedgerConfigured() bool {
	if c.LedgerBackend == LedgerPostgres {
		return c.DatabaseURL != ""
	}
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func Load() *Config {
	cfg := &Config{
		Port:               strings.TrimSpace(os.Getenv("PORT")),
		SupabaseURL:        strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseKey:        os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CoinGeckoBaseURL:   strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")),
		DexScreenerBaseURL: strings.TrimSpace(os.Getenv("DEXSCREENER_BASE_URL")),
		OTLPEndpoint:       strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.LedgerBackend = strings.ToLower(strings.TrimSpace(os.Getenv("LEDGER_BACKEND")))
	if cfg.LedgerBackend == "" {
		cfg.LedgerBackend = LedgerREST
	}
	if cfg.LedgerBackend != LedgerREST && cfg.LedgerBackend != LedgerPostgres {
		logger.Warn("unsupported LEDGER_BACKEND, defaulting to rest", zap.String("value", cfg.LedgerBackend))
		cfg.LedgerBackend = LedgerREST
	}

	switch cfg.LedgerBackend {
	case LedgerREST:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			logger.Warn("SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not set, ledger requests will fail")
		}
	case LedgerPostgres:
		if cfg.DatabaseURL == "" {
			logger.Warn("DATABASE_URL not set, ledger requests will fail")
		}
	}

	cfg.CodexSecretSet = cfg.SupabaseKey != ""
	if !cfg.CodexSecretSet {
		logger.Warn("SUPABASE_SERVICE_ROLE_KEY not set, codex hashes use the default secret")
	}

	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = CacheMemory
	}
	if cfg.CacheBackend != CacheMemory && cfg.CacheBackend != CacheRedis {
		logger.Warn("unsupported CACHE_BACKEND, defaulting to memory", zap.String("value", cfg.CacheBackend))
		cfg.CacheBackend = CacheMemory
	}
	if cfg.CacheBackend == CacheRedis && cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.CacheTTL = millis("CACHE_TTL_MS", 300_000)
	cfg.CacheMaxEntries = positiveInt("CACHE_MAX_ENTRIES", 1024)
	cfg.FetchTimeout = millis("FETCH_TIMEOUT_MS", 5000)
	cfg.FetchBaseDelay = millis("FETCH_BASE_DELAY_MS", 1000)

	cfg.FetchMaxRetries = 2
	if v := strings.TrimSpace(os.Getenv("FETCH_MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.FetchMaxRetries = n
		}
	}

	cfg.TracingEnabled = true
	if v := strings.TrimSpace(os.Getenv("TRACING_ENABLED")); v != "" {
		cfg.TracingEnabled = !strings.EqualFold(v, "false")
	}

	return cfg
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		logger.Warn("invalid integer setting, using default", zap.String("key", key), zap.String("value", v))
	}
	return def
}

func millis(key string, def int) time.Duration {
	return time.Duration(positiveInt(key, def)) * time.Millisecond
}
