package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	HTTPAddr       string
	DatabaseURL    string
	RedisURL       string
	CORSAllowAll   bool
	CORSOrigins    []string
	IngestBatch    int
	IngestInterval time.Duration
	IngestQueue    string
	Concurrency    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		IngestBatch:    mustInt(getEnv("INGEST_BATCH_SIZE", "100")),
		IngestInterval: mustDuration(getEnv("INGEST_INTERVAL", "5m")),
		IngestQueue:    getEnv("INGEST_QUEUE", "default"),
		Concurrency:    mustInt(getEnv("WORKER_CONCURRENCY", "10")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.IngestBatch < 1 {
		return nil, fmt.Errorf("INGEST_BATCH_SIZE must be positive")
	}

	return cfg, nil
}

// GetDatabaseURL satisfies db.DatabaseConfig.
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// GetRedisURL returns the redis connection URL used by the scheduler.
func (c *Config) GetRedisURL() string { return c.RedisURL }

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
