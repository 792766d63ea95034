// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL         = "https://api.apollo.io/v1"
	DefaultRateLimit       = 10
	DefaultMaxAttempts     = 3
	DefaultTimeoutMillis   = 30000
	DefaultRateLimiterKey  = "lead-pipeline:ratelimit:apollo"
	DefaultMaxResults      = 25
	defaultEnvironment     = "development"
	defaultApplicationName = "lead-pipeline"
)

// Load reads config.yaml (and config.<APP_ENVIRONMENT>.yaml on top of it)
// from ./configs, ../../configs or the working directory. A missing file is
// not an error; the API key may come from the environment alone.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = defaultEnvironment
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig() // optional

	return finish(v, env)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v, os.Getenv("APP_ENVIRONMENT"))
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper, env string) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found from the working directory upwards
// to the module root. Values already in the environment win.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// applyEnvOverrides lets the well-known variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("APOLLO_API_KEY"); val != "" {
		cfg.Apollo.APIKey = val
	}
	if val := os.Getenv("APOLLO_BASE_URL"); val != "" {
		cfg.Apollo.BaseURL = val
	}
	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Database.Redis.Address = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = defaultApplicationName
	}

	if cfg.Apollo.BaseURL == "" {
		cfg.Apollo.BaseURL = DefaultBaseURL
	}
	if cfg.Apollo.RateLimit == 0 {
		cfg.Apollo.RateLimit = DefaultRateLimit
	}
	if cfg.Apollo.MaxAttempts == 0 {
		cfg.Apollo.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Apollo.Timeout == 0 {
		cfg.Apollo.Timeout = DefaultTimeoutMillis
	}

	if cfg.RateLimiter.Backend == "" {
		cfg.RateLimiter.Backend = RateLimiterMemory
	}
	if cfg.RateLimiter.Key == "" {
		cfg.RateLimiter.Key = DefaultRateLimiterKey
	}

	if cfg.Workflow.DefaultMaxResults == 0 {
		cfg.Workflow.DefaultMaxResults = DefaultMaxResults
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Apollo.APIKey) == "" {
		return fmt.Errorf("apollo.api_key is required (or set APOLLO_API_KEY)")
	}
	u, err := url.Parse(cfg.Apollo.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("apollo.base_url must be an absolute URL, got %q", cfg.Apollo.BaseURL)
	}
	if cfg.Apollo.RateLimit < 1 {
		return fmt.Errorf("apollo.rate_limit must be at least 1 request per minute")
	}
	if cfg.Apollo.MaxAttempts < 1 {
		return fmt.Errorf("apollo.max_attempts must be at least 1")
	}
	if cfg.Apollo.Timeout < 0 {
		return fmt.Errorf("apollo.timeout must not be negative")
	}
	if cfg.Workflow.DefaultMaxResults < 1 {
		return fmt.Errorf("workflow.default_max_results must be at least 1")
	}

	switch cfg.RateLimiter.Backend {
	case RateLimiterMemory:
	case RateLimiterRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when rate_limiter.backend is redis")
		}
	default:
		return fmt.Errorf("rate_limiter.backend must be %q or %q, got %q", RateLimiterMemory, RateLimiterRedis, cfg.RateLimiter.Backend)
	}
	return nil
}
