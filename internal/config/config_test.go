package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_HOST", "db")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, []string{"*"}, cfg.App.CorsOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 60, cfg.RateLimit.Points)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, StorageProviderMinio, cfg.Storage.Provider)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxImageSize)
	assert.Equal(t, "postgresql://postgres:postgres@db:5432/postgres?sslmode=disable", cfg.Database.URL)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, jwtSecretEmptyError)
}

func TestLoadConfig_UnsupportedStorage(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_PROVIDER", "gcs")

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, invalidValueError)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RATE_LIMIT_POINTS", "10")
	t.Setenv("STORAGE_PROVIDER", "AZURE")
	t.Setenv("DATABASE_URL", "postgresql://u:p@h:1/d")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CorsOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.RateLimit.Points)
	assert.Equal(t, StorageProviderAzure, cfg.Storage.Provider)
	assert.Equal(t, "postgresql://u:p@h:1/d", cfg.Database.URL)
}
