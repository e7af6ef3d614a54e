package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	for _, k := range []string{"SERVER_ADDR", "DATABASE_URL", "JWT_REFRESH_SECRET", "ACCESS_TOKEN_TTL",
		"REFRESH_TOKEN_TTL", "REFRESH_COOKIE_NAME", "COOKIE_SECURE", "KAFKA_BROKERS", "PURGE_INTERVAL", "SEED_DATA"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "sqlite://edu_platform.db", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.JWTRefreshSecret)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "edu_refresh", cfg.RefreshCookieName)
	assert.False(t, cfg.CookieSecure)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "auth_events", cfg.KafkaAuthTopic)
	assert.Equal(t, time.Hour, cfg.PurgeInterval)
	assert.True(t, cfg.SeedData)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("ACCESS_TOKEN_TTL", "900")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/edu")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "b", cfg.JWTRefreshSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.SeedData)
	assert.Equal(t, "postgres://u:p@db:5432/edu", cfg.DatabaseURL)
}
