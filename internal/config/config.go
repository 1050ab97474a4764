package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

type RunMode string

const (
	ModeOnce  RunMode = "once"
	ModeServe RunMode = "serve"
)

type Config struct {
	AppEnv string
	Mode   RunMode
	Port   int

	// Postgres (pgxpool DSN)
	DBDSN string

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// RabbitMQ (empty URL in dev disables publishing)
	RabbitURL      string
	RabbitExchange string

	// JWT verification for the internal trigger endpoint (serve mode)
	JWTSecret string
	JWTIssuer string

	// Batch tuning
	TopN          int
	Weights       domain.ScoreWeights
	BatchWorkers  int
	UserTimeout   time.Duration
	BatchInterval time.Duration
	PageSize      int
	RunLockTTL    time.Duration

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Mode = RunMode(getEnv("RUN_MODE", string(ModeOnce)))
	cfg.Port = getInt("PORT", 8080)

	// --- Postgres: prefer DATABASE_URL if present, else build from POSTGRES_*
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL != "" {
		cfg.DBDSN = dbURL
	} else {
		addr := getEnv("POSTGRES_ADDR", "")
		user := getEnv("POSTGRES_USER", "")
		pass := getEnv("POSTGRES_PASSWORD", "")
		db := getEnv("POSTGRES_DB", "")
		sslmode := getEnv("POSTGRES_SSLMODE", "disable")
		cfg.DBDSN = buildPostgresURL(addr, user, pass, db, sslmode)
	}

	// --- Redis
	cfg.RedisAddr = getEnv("REDIS_ADDR", "127.0.0.1:6379")
	cfg.RedisPass = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	// --- RabbitMQ
	cfg.RabbitURL = strings.TrimSpace(os.Getenv("RABBITMQ_URL"))
	cfg.RabbitExchange = getEnv("RABBITMQ_EXCHANGE", "recipe.events")

	// --- JWT
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	// --- Batch tuning
	cfg.TopN = getInt("TOP_N", 5)
	cfg.Weights = loadWeights()
	cfg.BatchWorkers = getInt("BATCH_WORKERS", 1)
	cfg.UserTimeout = getDuration("USER_TIMEOUT", 30*time.Second)
	cfg.BatchInterval = getDuration("BATCH_INTERVAL", 6*time.Hour)
	cfg.PageSize = getInt("PAGE_SIZE", 500)
	cfg.RunLockTTL = getDuration("RUN_LOCK_TTL", 2*time.Minute)

	// --- Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// --- Validation (fail fast)
	if cfg.Mode != ModeOnce && cfg.Mode != ModeServe {
		return nil, fmt.Errorf("invalid RUN_MODE %q (want once|serve)", cfg.Mode)
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("missing database config: provide DATABASE_URL or POSTGRES_ADDR/POSTGRES_USER/POSTGRES_PASSWORD/POSTGRES_DB")
	}
	if cfg.TopN < 0 {
		return nil, fmt.Errorf("TOP_N must be >= 0, got %d", cfg.TopN)
	}
	if cfg.BatchWorkers < 1 {
		return nil, fmt.Errorf("BATCH_WORKERS must be >= 1, got %d", cfg.BatchWorkers)
	}
	if cfg.Mode == ModeServe && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET (required when RUN_MODE=serve)")
	}
	if cfg.AppEnv != "dev" && cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing RABBITMQ_URL (required when APP_ENV != dev)")
	}

	return cfg, nil
}

// loadWeights returns the default weight table with any SCORE_WEIGHT_*
// overrides applied. An unparseable override falls back to the default.
func loadWeights() domain.ScoreWeights {
	w := domain.DefaultScoreWeights()
	for eventType, key := range map[string]string{
		domain.EventSave:     "SCORE_WEIGHT_SAVE",
		domain.EventRemove:   "SCORE_WEIGHT_REMOVE",
		domain.EventSearch:   "SCORE_WEIGHT_SEARCH",
		domain.EventAISearch: "SCORE_WEIGHT_AI_SEARCH",
	} {
		w[eventType] = getInt(key, w[eventType])
	}
	return w
}

// buildPostgresURL builds a safe postgres URL DSN (handles special characters).
func buildPostgresURL(addr, user, pass, db, sslmode string) string {
	if strings.TrimSpace(addr) == "" || strings.TrimSpace(user) == "" || strings.TrimSpace(db) == "" {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   strings.TrimSpace(addr),
		Path:   "/" + strings.TrimPrefix(strings.TrimSpace(db), "/"),
	}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}

	q := url.Values{}
	if strings.TrimSpace(sslmode) != "" {
		q.Set("sslmode", strings.TrimSpace(sslmode))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
