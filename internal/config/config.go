// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API process needs at startup. Only Addr has
// no empty-value meaning; the rest degrade (no DB, no Redis) when unset.
type Config struct {
	Addr            string
	PostgresDSN     string
	RedisAddr       string
	CORSOrigins     []string
	TokenTTL        time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	DashboardTTL    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads SCANID_* environment variables. A .env file in the working
// directory is merged in first when present; real environment wins.
func Load() (Config, error) {
	// Ignore a missing file, that is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getEnv("SCANID_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("SCANID_PG_DSN"),
		RedisAddr:       os.Getenv("SCANID_REDIS_ADDR"),
		CORSOrigins:     splitList(os.Getenv("SCANID_CORS_ORIGINS")),
		TokenTTL:        24 * time.Hour,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
		DashboardTTL:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	var err error
	if cfg.TokenTTL, err = getDuration("SCANID_TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.DashboardTTL, err = getDuration("SCANID_DASHBOARD_CACHE_TTL", cfg.DashboardTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SCANID_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = getFloat("SCANID_RATE_LIMIT_RPS", cfg.RateLimitRPS); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = getInt("SCANID_RATE_LIMIT_BURST", cfg.RateLimitBurst); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
