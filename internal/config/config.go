// Package config loads process configuration from the environment.
// A .env file, if present, is loaded by main before Load is called.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the process configuration assembled by Load.
type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	DB             DBConfig
	JWT            JWTConfig
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// DBConfig selects the store backend.
type DBConfig struct {
	// Driver is a database/sql driver name: "sqlite3", "pgx" or "memory".
	Driver string
	URL    string
}

// JWTConfig holds the token signing secret and lifetime.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// ErrMissingSecret is returned by Load when JWT_SECRET is unset.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads the configuration. JWT_SECRET is mandatory; everything else has
// a default suitable for local development.
func Load() (Config, error) {
	return load(true)
}

// LoadStorage is Load for tools that only touch the database and never sign
// tokens: JWT_SECRET may be unset.
func LoadStorage() (Config, error) {
	return load(false)
}

func load(requireSecret bool) (Config, error) {
	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "sqlite3"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if requireSecret && cfg.JWT.Secret == "" {
		return Config{}, ErrMissingSecret
	}

	switch cfg.DB.Driver {
	case "sqlite3":
		if cfg.DB.URL == "" {
			cfg.DB.URL = "./data/blog.db"
		}
	case "pgx":
		if cfg.DB.URL == "" {
			return Config{}, errors.New("DATABASE_URL must be set for DB_DRIVER=pgx")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	var err error
	if cfg.JWT.TTL, err = getDuration("JWT_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", k, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
