package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the quality service
type Config struct {
	Port     string
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	NATS     NATSConfig
	FX       FXConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Schema   string
}

// RedisConfig holds redis configuration for the session store and caches
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds session/JWT configuration
type AuthConfig struct {
	JWTSecret      string
	SessionTTL     time.Duration
	CookieName     string
	CookieSecure   bool
	AllowedOrigins []string
}

// NATSConfig holds event publishing configuration
type NATSConfig struct {
	URL string
}

// FXConfig holds exchange-rate client configuration
type FXConfig struct {
	BaseURL        string
	UpdateInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8091"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "waqc"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Schema:   getEnv("DB_SCHEMA", "quality"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
			SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
			CookieName:     getEnv("SESSION_COOKIE_NAME", "waqc_session"),
			CookieSecure:   getEnv("SESSION_COOKIE_SECURE", "false") == "true",
			AllowedOrigins: []string{getEnv("CORS_ORIGIN", "*")},
		},
		NATS: NATSConfig{
			URL: os.Getenv("NATS_URL"),
		},
		FX: FXConfig{
			BaseURL:        getEnv("FX_API_URL", "https://api.frankfurter.app"),
			UpdateInterval: time.Duration(getEnvInt("FX_UPDATE_INTERVAL_HOURS", 6)) * time.Hour,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}
