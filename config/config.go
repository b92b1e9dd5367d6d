package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hotel-frontdesk/utils"
)

const (
	BackendHTTP  = "http"
	BackendLocal = "local"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Backend  BackendConfig
	Session  SessionConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Auth     AuthConfig
	Email    utils.SMTPConfig
	Billing  BillingConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DatabaseConfig applies to BACKEND_MODE=local only. The DSN itself is
// resolved in ConnectDatabase.
type DatabaseConfig struct {
	Seed          bool
	SlowThreshold time.Duration
}

type BackendConfig struct {
	Mode    string
	URL     string
	Token   string
	Timeout time.Duration
}

type SessionConfig struct {
	Store string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type NATSConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
}

type BillingConfig struct {
	Timezone string
	Location *time.Location
}

// Load reads the environment. Call godotenv.Load first when a .env file is
// in use.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 20*time.Second),
			IdleTimeout:     getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			CORSOrigins:     parseList(os.Getenv("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Seed:          getBool("DB_SEED", true),
			SlowThreshold: getDuration("DB_SLOW_THRESHOLD", time.Second),
		},
		Backend: BackendConfig{
			Mode:    strings.ToLower(getEnv("BACKEND_MODE", BackendLocal)),
			URL:     getEnv("BACKEND_URL", ""),
			Token:   getEnv("BACKEND_TOKEN", ""),
			Timeout: getDuration("BACKEND_TIMEOUT", 0),
		},
		Session: SessionConfig{
			Store: strings.ToLower(getEnv("SESSION_STORE", SessionMemory)),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Email: utils.SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", ""),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			FromName: getEnv("SMTP_FROM_NAME", "Front Desk"),
		},
		Billing: BillingConfig{
			Timezone: getEnv("HOTEL_TIMEZONE", "Local"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	switch cfg.Backend.Mode {
	case BackendLocal:
	case BackendHTTP:
		if cfg.Backend.URL == "" {
			return nil, fmt.Errorf("BACKEND_URL is required when BACKEND_MODE=%s", BackendHTTP)
		}
	default:
		return nil, fmt.Errorf("unknown BACKEND_MODE %q", cfg.Backend.Mode)
	}

	switch cfg.Session.Store {
	case SessionMemory, SessionRedis:
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.Session.Store)
	}

	loc, err := time.LoadLocation(cfg.Billing.Timezone)
	if err != nil {
		return nil, fmt.Errorf("HOTEL_TIMEZONE: %w", err)
	}
	cfg.Billing.Location = loc

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// parseList splits a comma separated value. An empty value means "*".
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
