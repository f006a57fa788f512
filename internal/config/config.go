package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Stores
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string
	GamesCSVPath  string // optional fallback source

	// Pipeline
	Seed            int64
	TrainProportion float64
	Folds           int
	WorkerCount     int

	// HTTP server timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		GamesCSVPath: getEnv("GAMES_CSV_PATH", ""),

		Seed:            getEnvInt64("SEED", 2357),
		TrainProportion: getEnvFloat("TRAIN_PROPORTION", 0.8),
		Folds:           getEnvInt("FOLDS", 5),
		WorkerCount:     getEnvInt("WORKER_COUNT", 8),

		ReadTimeout:  getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	if cfg.TrainProportion <= 0 || cfg.TrainProportion >= 1 {
		return nil, fmt.Errorf("TRAIN_PROPORTION must lie in (0,1), got %g", cfg.TrainProportion)
	}
	if cfg.Folds < 2 {
		return nil, fmt.Errorf("FOLDS must be at least 2, got %d", cfg.Folds)
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}
	// ClickHouse is optional when a CSV source is configured.
	cfg.ClickHouseURL = getEnv("CLICKHOUSE_URL", "")
	if cfg.ClickHouseURL == "" && cfg.GamesCSVPath == "" {
		return nil, fmt.Errorf("either CLICKHOUSE_URL or GAMES_CSV_PATH must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
