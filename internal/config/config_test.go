package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenExpiry)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.LockDuration)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("AUTH_MAX_FAILED_LOGINS", "3")
	t.Setenv("AUTH_LOCK_DURATION", "30m")
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockDuration)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("AUTH_MAX_FAILED_LOGINS", "lots")
	t.Setenv("AUTH_LOCK_DURATION", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.LockDuration)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5432", User: "daybook",
		Password: "secret", DBName: "daybookdb", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=daybook password=secret dbname=daybookdb sslmode=disable",
		db.DSN(),
	)
}

func TestRedisAddr(t *testing.T) {
	redis := RedisConfig{Host: "cache", Port: "6379"}
	assert.Equal(t, "cache:6379", redis.Addr())
}
