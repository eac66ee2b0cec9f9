// Package config reads process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	Debug      bool

	JWTSecret      string
	AccessTokenTTL time.Duration

	RefreshTokenTTL time.Duration
	CookieName      string
	CutoffMinutes   int64

	DatabaseURL string

	RedisAddr   string
	RedisPrefix string
}

// Load reads the .env file when present and resolves all settings.
// Only JWT_SECRET is mandatory; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		ListenAddr:      envOr("LISTEN_ADDR", "0.0.0.0:8080"),
		Debug:           envBool("DEBUG", false),
		JWTSecret:       secret,
		AccessTokenTTL:  time.Duration(envInt("ACCESS_TOKEN_EXPIRE", 15*60)) * time.Second,
		RefreshTokenTTL: time.Duration(envInt("REFRESH_TOKEN_EXPIRE", 7*24*3600)) * time.Second,
		CookieName:      envOr("REFRESH_TOKEN_KEY", "refresh_token"),
		CutoffMinutes:   envInt("RENEW_CUTOFF_MINUTES", 30),
		DatabaseURL:     DatabaseURL(),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPrefix:     envOr("REDIS_PREFIX", "authd"),
	}
	return cfg, nil
}

// DatabaseURL resolves the connection string from DATABASE_URL, falling
// back to the individual POSTGRES_* variables. Split out from Load so
// the migration runner can connect without the full service config.
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return dbConnString()
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
