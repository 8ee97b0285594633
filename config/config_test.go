package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address())
	assert.Equal(t, "postgres", cfg.Database.GetDriver())
	assert.Equal(t, 5*time.Second, cfg.Database.GetPingTimeout())
	assert.Equal(t, "HS256", cfg.Auth.GetSigningMethod())
	assert.Equal(t, "cookie:jwt,header:Authorization", cfg.Auth.GetTokenLookup())
	assert.Equal(t, []string{"pixelpanel"}, cfg.Auth.GetAudience())
	assert.Equal(t, "./data/storage", cfg.Storage.Root)
	assert.False(t, cfg.ClickHouse.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("AUTH_AUDIENCE", "web, api")
	t.Setenv("AUTH_JWKS_URLS", "https://idp.example.com/jwks.json")
	t.Setenv("CLICKHOUSE_ENABLED", "true")
	t.Setenv("CLICKHOUSE_ADDR", "ch1:9000,ch2:9000")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
	assert.Equal(t, "sqlite", cfg.Database.GetDriver())
	assert.Equal(t, []string{"web", "api"}, cfg.Auth.GetAudience())
	assert.Equal(t, []string{"https://idp.example.com/jwks.json"}, cfg.Auth.JWKSURLs)
	assert.True(t, cfg.ClickHouse.Enabled)
	assert.Equal(t, []string{"ch1:9000", "ch2:9000"}, cfg.ClickHouse.Addr)
}

func TestEnvHelpersFallBackOnBadValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("APP_DEBUG", "not-a-bool")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Debug)
}
