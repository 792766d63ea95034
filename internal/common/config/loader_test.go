package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APOLLO_API_KEY", "APOLLO_BASE_URL", "REDIS_ADDRESS", "APP_ENVIRONMENT"} {
		t.Setenv(k, "")
	}
}

func TestLoadFromFile_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(writeConfig(t, "apollo:\n  api_key: abc\n"))
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Apollo.APIKey)
	assert.Equal(t, DefaultBaseURL, cfg.Apollo.BaseURL)
	assert.Equal(t, 10, cfg.Apollo.RateLimit)
	assert.Equal(t, 3, cfg.Apollo.MaxAttempts)
	assert.Equal(t, 30*time.Second, GetDuration(cfg.Apollo.Timeout))
	assert.Equal(t, RateLimiterMemory, cfg.RateLimiter.Backend)
	assert.Equal(t, DefaultRateLimiterKey, cfg.RateLimiter.Key)
	assert.Equal(t, 25, cfg.Workflow.DefaultMaxResults)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "lead-pipeline", cfg.App.Name)
}

func TestLoadFromFile_ExplicitValues(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(writeConfig(t, `
apollo:
  api_key: abc
  base_url: http://localhost:8080/v1
  rate_limit: 50
  max_attempts: 5
  timeout: 1000
rate_limiter:
  backend: redis
  key: team-a
database:
  redis:
    address: localhost:6379
    db: 2
workflow:
  default_max_results: 60
metrics:
  address: ":9090"
`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/v1", cfg.Apollo.BaseURL)
	assert.Equal(t, 50, cfg.Apollo.RateLimit)
	assert.Equal(t, 5, cfg.Apollo.MaxAttempts)
	assert.Equal(t, time.Second, GetDuration(cfg.Apollo.Timeout))
	assert.Equal(t, RateLimiterRedis, cfg.RateLimiter.Backend)
	assert.Equal(t, "team-a", cfg.RateLimiter.Key)
	assert.Equal(t, "localhost:6379", cfg.Database.Redis.Address)
	assert.Equal(t, 2, cfg.Database.Redis.DB)
	assert.Equal(t, 60, cfg.Workflow.DefaultMaxResults)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
}

func TestLoadFromFile_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APOLLO_API_KEY", "from-env")
	t.Setenv("APOLLO_BASE_URL", "https://staging.example.test/v1")
	t.Setenv("LEADS_REDIS_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, `
apollo:
  api_key: from-file
database:
  redis:
    password: ${LEADS_REDIS_PASSWORD}
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Apollo.APIKey)
	assert.Equal(t, "https://staging.example.test/v1", cfg.Apollo.BaseURL)
	assert.Equal(t, "s3cret", cfg.Database.Redis.Password)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "missing api key", content: "apollo:\n  rate_limit: 5\n", wantErr: "apollo.api_key"},
		{name: "negative rate limit", content: "apollo:\n  api_key: k\n  rate_limit: -1\n", wantErr: "rate_limit"},
		{name: "negative attempts", content: "apollo:\n  api_key: k\n  max_attempts: -2\n", wantErr: "max_attempts"},
		{name: "relative base url", content: "apollo:\n  api_key: k\n  base_url: /v1\n", wantErr: "base_url"},
		{name: "redis without address", content: "apollo:\n  api_key: k\nrate_limiter:\n  backend: redis\n", wantErr: "database.redis.address"},
		{name: "unknown backend", content: "apollo:\n  api_key: k\nrate_limiter:\n  backend: etcd\n", wantErr: "rate_limiter.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_FromWorkingDirectory(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"),
		[]byte("apollo:\n  api_key: base\n  rate_limit: 20\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.staging.yaml"),
		[]byte("apollo:\n  rate_limit: 30\n"), 0o600))
	t.Setenv("APP_ENVIRONMENT", "staging")
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "base", cfg.Apollo.APIKey)
	assert.Equal(t, 30, cfg.Apollo.RateLimit)
	assert.Equal(t, "staging", cfg.App.Environment)
}
