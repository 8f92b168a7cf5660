package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	ServerPort     int
	StoreTimeout   time.Duration
	LogLevel       slog.Level

	// Redis is optional, snapshots are cached in memory when both are empty.
	RedisURL    string
	RedisAddr   string
	SnapshotTTL time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseDriver: orDefault(getenv("DATABASE_DRIVER"), "sqlite3"),
		DatabaseURL:    getenv("DATABASE_URL"),
		RedisURL:       getenv("REDIS_URL"),
		RedisAddr:      getenv("REDIS_ADDR"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite3":
		cfg.DatabaseURL = orDefault(cfg.DatabaseURL, "venue_bracket.db?_journal_mode=WAL")
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be sqlite3 or postgres, got %q", cfg.DatabaseDriver)
	}

	port, err := strconv.Atoi(orDefault(getenv("SERVER_PORT"), "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if cfg.StoreTimeout, err = duration(getenv, "STORE_TIMEOUT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.SnapshotTTL, err = duration(getenv, "SNAPSHOT_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(orDefault(strings.TrimSpace(getenv("LOG_LEVEL")), "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	return cfg, nil
}

func duration(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
