package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POSTCRAFT_AUTH_JWTSECRET", "secret")
	t.Setenv("POSTCRAFT_LLM_PROVIDER", "anthropic")
	t.Setenv("POSTCRAFT_AUTH_ACCESSTOKENTTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.True(t, cfg.LLM.JSONMode)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 2*time.Minute, cfg.Redis.BusyTTL)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
}

func TestLoad_ConfigFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "storage:\n  driver: postgres\n  postgres:\n    dsn: postgres://localhost/postcraft\nllm:\n  model: gpt-4o\n"
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))
	require.NoError(t, os.WriteFile(".env", []byte("POSTCRAFT_AUTH_JWTSECRET=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("POSTCRAFT_AUTH_JWTSECRET") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/postcraft", cfg.Storage.Postgres.DSN)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage: StorageConfig{Driver: "sqlite"},
			LLM:     LLMConfig{Provider: "openai"},
			Auth:    AuthConfig{JWTSecret: "s", AccessTokenTTL: time.Hour},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "ollama" }},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"zero ttl", func(c *Config) { c.Auth.AccessTokenTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
