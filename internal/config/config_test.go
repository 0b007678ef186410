package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "gatehouse", cfg.Database.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Security.MaxLoginAttempts)
	assert.Equal(t, 15, cfg.Security.LoginWindowMinutes)
	assert.Equal(t, 30, cfg.Security.AttemptRetentionDays)
	assert.Equal(t, 1*time.Hour, cfg.Security.CleanupInterval)
	assert.Equal(t, 15, cfg.Email.CodeExpiryMinutes)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_WeakJWTSecretInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "short-secret")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveSecurityLimits(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_LOGIN_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_AdminEmailNormalized(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_EMAIL", "Admin@Example.COM")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", cfg.Auth.AdminEmail)
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw", Name: "gatehouse", SSLMode: "require",
	}
	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=gatehouse sslmode=require", cfg.DSN())
}
