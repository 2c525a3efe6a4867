// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Event broker backends.
const (
	EventsBackendRedis = "redis"
	EventsBackendNATS  = "nats"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Events   EventsConfig
	JWT      JWTConfig
	Session  SessionConfig
	CORS     CORSConfig
	Telegram TelegramConfig
	Log      LogConfig
	App      AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	TimeoutRead  time.Duration
	TimeoutWrite time.Duration
	TimeoutIdle  time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the connection string understood by the postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// EventsConfig selects the change-notification broker
type EventsConfig struct {
	Backend string
	NATSURL string
	Channel string
}

// JWTConfig holds token configuration
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// SessionConfig holds browsing-session cookie configuration
type SessionConfig struct {
	Secret  string
	ViewTTL time.Duration
	Secure  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// TelegramConfig holds the staff notifier configuration. An empty token disables it.
type TelegramConfig struct {
	BotToken    string
	StaffChatID int64
	Language    string
}

// Enabled reports whether the notifier should start.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.StaffChatID != 0
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// AppConfig holds general application configuration
type AppConfig struct {
	Env  string
	Name string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// godotenv doesn't override already-set variables
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			TimeoutRead:  getDurationEnv("SERVER_TIMEOUT_READ", 10*time.Second),
			TimeoutWrite: getDurationEnv("SERVER_TIMEOUT_WRITE", 10*time.Second),
			TimeoutIdle:  getDurationEnv("SERVER_TIMEOUT_IDLE", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "citizenpulse"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "citizenpulse"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Events: EventsConfig{
			Backend: strings.ToLower(getEnv("EVENTS_BACKEND", EventsBackendRedis)),
			NATSURL: getEnv("NATS_URL", "nats://localhost:4222"),
			Channel: getEnv("EVENTS_CHANNEL", "citizenpulse.changes"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_ISSUER", "citizenpulse"),
			Expiration: getDurationEnv("JWT_EXPIRATION", 72*time.Hour),
		},
		Session: SessionConfig{
			Secret:  getEnv("SESSION_SECRET", ""),
			ViewTTL: getDurationEnv("VIEW_SESSION_TTL", DefaultViewSessionTTL),
			Secure:  getBoolEnv("SESSION_COOKIE_SECURE", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "OPTIONS"}),
			AllowedHeaders:   getSliceEnv("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getIntEnv("CORS_MAX_AGE", 300),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			StaffChatID: getInt64Env("TELEGRAM_STAFF_CHAT_ID", 0),
			Language:    getEnv("TELEGRAM_LANGUAGE", "en"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Name: getEnv("APP_NAME", "Citizen Pulse"),
		},
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.Database.Password == "" && c.App.Env == "production" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}
	switch c.Events.Backend {
	case EventsBackendRedis, EventsBackendNATS:
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.Events.Backend)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, v := range parts {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
