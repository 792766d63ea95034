// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct. Every optional field
// is listed with its default in applyDefaults.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Apollo      ApolloConfig      `mapstructure:"apollo"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Workflow    WorkflowConfig    `mapstructure:"workflow"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ApolloConfig configures the remote lead API and the retrying transport.
type ApolloConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	RateLimit   int    `mapstructure:"rate_limit"`   // requests per minute
	MaxAttempts int    `mapstructure:"max_attempts"` // physical calls per logical operation
	Timeout     int    `mapstructure:"timeout"`      // milliseconds
}

const (
	RateLimiterMemory = "memory"
	RateLimiterRedis  = "redis"
)

// RateLimiterConfig selects where the last-dispatch slot lives. The redis
// backend lets several processes share one quota.
type RateLimiterConfig struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkflowConfig struct {
	DefaultMaxResults int `mapstructure:"default_max_results"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Address is set.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
