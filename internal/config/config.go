// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	devJWTSecret = "dev-secret-change-me"
)

// Config is the full process configuration.
type Config struct {
	Env      string
	LogLevel string
	Port     string

	Storage     string
	DatabaseURL string
	DBMaxConns  int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DashboardTTL  time.Duration

	JWTSecret      string
	AccessTokenTTL time.Duration
	ShopTimezone   string

	MediaDir     string
	MediaBaseURL string

	Worker WorkerConfig
}

// WorkerConfig holds background job intervals.
type WorkerConfig struct {
	RelayInterval    time.Duration
	OverdueInterval  time.Duration
	SnapshotInterval time.Duration
	OutboxRetention  time.Duration
}

// IsDevelopment reports APP_ENV=development.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the environment. DATABASE_URL is required for postgres storage and
// JWT_SECRET outside development.
func Load() (Config, error) {
	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("APP_PORT", "8080"),

		Storage:     getEnv("STORAGE", StoragePostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 25),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		DashboardTTL:  getEnvDuration("DASHBOARD_CACHE_TTL", 10*time.Minute),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 12*time.Hour),
		ShopTimezone:   getEnv("SHOP_TIMEZONE", "UTC"),

		MediaDir:     getEnv("MEDIA_DIR", "./media"),
		MediaBaseURL: getEnv("MEDIA_BASE_URL", "/media"),

		Worker: WorkerConfig{
			RelayInterval:    getEnvDuration("WORKER_RELAY_INTERVAL", 5*time.Second),
			OverdueInterval:  getEnvDuration("WORKER_OVERDUE_INTERVAL", time.Hour),
			SnapshotInterval: getEnvDuration("WORKER_SNAPSHOT_INTERVAL", 15*time.Minute),
			OutboxRetention:  getEnvDuration("WORKER_OUTBOX_RETENTION", 7*24*time.Hour),
		},
	}

	switch cfg.Storage {
	case StoragePostgres:
		url, err := mustEnv("DATABASE_URL")
		if err != nil {
			return cfg, err
		}
		cfg.DatabaseURL = url
	case StorageMemory:
	default:
		return cfg, fmt.Errorf("unknown STORAGE %q (want postgres or memory)", cfg.Storage)
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return cfg, fmt.Errorf("required environment variable JWT_SECRET not set")
		}
		cfg.JWTSecret = devJWTSecret
	}

	if _, err := time.LoadLocation(cfg.ShopTimezone); err != nil {
		return cfg, fmt.Errorf("invalid SHOP_TIMEZONE %q: %w", cfg.ShopTimezone, err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s not set", key)
	}
	return value, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
