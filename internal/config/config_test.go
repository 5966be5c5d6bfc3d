package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("UPLOAD_TYPE_POLICY", "")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "")
	t.Setenv("AUTH_ALLOW_USER_ID_HEADER", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "http://localhost:5000", cfg.PublicBaseURL)
	assert.Equal(t, UploadPolicyStrict, cfg.UploadTypePolicy)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadBytes())
	assert.True(t, cfg.AllowUserIDHeader)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://files.example.com/")
	t.Setenv("UPLOAD_TYPE_POLICY", "Permissive")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "5")
	t.Setenv("AUTH_ALLOW_USER_ID_HEADER", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "https://files.example.com", cfg.PublicBaseURL)
	assert.Equal(t, UploadPolicyPermissive, cfg.UploadTypePolicy)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.AllowUserIDHeader)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown policy", mutate: func(c *Config) { c.UploadTypePolicy = "loose" }, wantErr: true},
		{name: "zero upload size", mutate: func(c *Config) { c.MaxUploadMB = 0 }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.TokenTTL = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				UploadTypePolicy: UploadPolicyStrict,
				MaxUploadMB:      100,
				TokenTTL:         time.Hour,
				JWTSecret:        "secret",
			}
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
