package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "test")
	t.Setenv("RATE_LIMIT_MAX", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, EnvTest, cfg.App.Env)
	assert.Equal(t, 7, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow())
	assert.Equal(t, "http://localhost:3000", cfg.App.ClientURL)
	assert.Equal(t, "codesign.activity", cfg.RabbitMQ.ExchangeName.Activity)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:       AppCfg{Env: EnvDevelopment},
			Auth:      AuthCfg{JWTSecret: "x"},
			RateLimit: RateLimitCfg{Max: 100, WindowSec: 900},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwt_secret"},
		{name: "unknown env", mutate: func(c *Config) { c.App.Env = "staging" }, wantErr: "app.env"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.Max = 0 }, wantErr: "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, 10*time.Minute, cfg.GitHubCacheTTL())

	cfg.Auth.JWTExpiryHours = 2
	cfg.GitHub.CacheTTLSec = 30
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, 30*time.Second, cfg.GitHubCacheTTL())
}
