package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB     DatabaseConfig
	Redis  RedisConfig
	Portal PortalConfig
	Geo    GeoConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters for the PSGC
// mirror. Only required when the mirror is enabled.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// PortalConfig points at the core portal backend (OCR, register, login).
type PortalConfig struct {
	BaseURL string
}

// GeoConfig configures the geographic reference source.
type GeoConfig struct {
	// BaseURL of the PSGC reference service.
	BaseURL string
	// Source selects where address lookups are served from:
	// "remote" (PSGC API) or "mirror" (local Postgres copy).
	Source string
	// CacheTTL bounds how long fetched option lists stay cached.
	CacheTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	GeoSyncInterval      time.Duration
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database (PSGC mirror)
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Core portal backend
	cfg.Portal = PortalConfig{
		BaseURL: getEnv("PORTAL_API_URL", "http://localhost:5000"),
	}

	// Geographic reference
	cfg.Geo = GeoConfig{
		BaseURL: getEnv("PSGC_API_URL", "https://psgc.cloud"),
		Source:  getEnv("GEO_SOURCE", "remote"),
	}
	if cfg.Geo.Source != "remote" && cfg.Geo.Source != "mirror" {
		return nil, fmt.Errorf("invalid GEO_SOURCE: %q (want remote or mirror)", cfg.Geo.Source)
	}

	// Workers (durations)
	var err error
	if cfg.Geo.CacheTTL, err = parseDurationEnv("GEO_CACHE_TTL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid GEO_CACHE_TTL: %w", err)
	}
	if cfg.Worker.GeoSyncInterval, err = parseDurationEnv("GEO_SYNC_INTERVAL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid GEO_SYNC_INTERVAL: %w", err)
	}
	if cfg.Worker.SessionTTL, err = parseDurationEnv("SESSION_TTL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Worker.SessionSweepInterval, err = parseDurationEnv("SESSION_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}

	// The mirror needs a reachable database; the remote source does not.
	if cfg.Geo.Source == "mirror" {
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, errors.New("mirror geo source requires DB_HOST, DB_USER, and DB_NAME")
		}
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
