package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "PORT", "JWT_TTL", "REDIS_URL", "MINIO_ENDPOINT", "MINIO_USE_SSL", "PUBLIC_BASE_URL", "STORAGE_TYPE", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Server.StorageType)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.MinIO.Endpoint)
	assert.False(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "http://localhost:8080", cfg.Auth.PublicBaseURL)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrInsecureJWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "parties")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("JWT_TTL", "90")
	t.Setenv("REDIS_LOCK_TTL", "1m")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("PUBLIC_BASE_URL", "https://konkatsu.example.com/")

	cfg := Load()

	assert.Equal(t, "postgres://admin:secret@db:6543/parties?sslmode=require", cfg.GetDatabaseURL())
	assert.Equal(t, 90*time.Second, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Minute, cfg.Redis.LockTTL)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "https://konkatsu.example.com", cfg.Auth.PublicBaseURL)
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		secret string
		valid  bool
	}{
		{"", false},
		{"   ", false},
		{"change-me", false},
		{"Change-Me", false},
		{"secret", false},
		{"8f2c1e0a9b7d4c3e", true},
	}

	for _, tt := range tests {
		t.Run(tt.secret, func(t *testing.T) {
			cfg := &Config{}
			cfg.Auth.JWTSecret = tt.secret

			err := cfg.Validate()
			if tt.valid {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInsecureJWTSecret)
		})
	}
}
