// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq background scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetOrderSyncInterval() time.Duration
}

// StoreConfig provides settings for the external e-commerce store connection.
type StoreConfig interface {
	GetStoreBaseURL() string
	GetStoreConsumerKey() string
	GetStoreConsumerSecret() string
	GetStoreTenantID() string
	IsStoreEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTAccessSecret     string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	OrderSyncInterval   time.Duration
	StoreBaseURL        string
	StoreConsumerKey    string
	StoreConsumerSecret string
	StoreTenantID       string
}

// Load reads configuration from environment variables.
// A .env file is loaded first if present (development convenience).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                 getEnv("ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTAccessSecret:     os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:        getBoolEnv("CORS_ALLOW_ALL", false),
		CORSOrigins:         getListEnv("CORS_ORIGINS"),
		CORSAllowCreds:      getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		RedisURL:            os.Getenv("REDIS_URL"),
		RedisTLSInsecure:    getBoolEnv("REDIS_TLS_INSECURE", false),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    getIntEnv("ASYNQ_CONCURRENCY", 10),
		OrderSyncInterval:   getDurationEnv("ORDER_SYNC_INTERVAL", 15*time.Minute),
		StoreBaseURL:        os.Getenv("STORE_BASE_URL"),
		StoreConsumerKey:    os.Getenv("STORE_CONSUMER_KEY"),
		StoreConsumerSecret: os.Getenv("STORE_CONSUMER_SECRET"),
		StoreTenantID:       os.Getenv("STORE_TENANT_ID"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

// GetDatabaseURL returns the database connection URL.
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// GetJWTAccessSecret returns the JWT access token secret.
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// GetHTTPAddr returns the HTTP listen address.
func (c *Config) GetHTTPAddr() string { return c.HTTPAddr }

// GetCORSAllowAll returns whether all origins are allowed.
func (c *Config) GetCORSAllowAll() bool { return c.CORSAllowAll }

// GetCORSOrigins returns the allowed CORS origins.
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// GetCORSAllowCreds returns whether credentials are allowed in CORS requests.
func (c *Config) GetCORSAllowCreds() bool { return c.CORSAllowCreds }

// GetRedisURL returns the redis connection URL for asynq.
func (c *Config) GetRedisURL() string { return c.RedisURL }

// GetRedisTLSInsecure returns whether TLS verification is skipped for redis.
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// GetAsynqQueueName returns the asynq queue name.
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }

// GetAsynqConcurrency returns the asynq worker concurrency.
func (c *Config) GetAsynqConcurrency() int { return c.AsynqConcurrency }

// GetOrderSyncInterval returns how often the periodic order import runs.
func (c *Config) GetOrderSyncInterval() time.Duration { return c.OrderSyncInterval }

// GetStoreBaseURL returns the external store base URL.
func (c *Config) GetStoreBaseURL() string { return c.StoreBaseURL }

// GetStoreConsumerKey returns the external store API consumer key.
func (c *Config) GetStoreConsumerKey() string { return c.StoreConsumerKey }

// GetStoreConsumerSecret returns the external store API consumer secret.
func (c *Config) GetStoreConsumerSecret() string { return c.StoreConsumerSecret }

// GetStoreTenantID returns the tenant the configured store belongs to.
func (c *Config) GetStoreTenantID() string { return c.StoreTenantID }

// IsStoreEnabled returns whether an external store connection is configured.
func (c *Config) IsStoreEnabled() bool {
	return c.StoreBaseURL != "" && c.StoreConsumerKey != "" && c.StoreConsumerSecret != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
