package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"LEDGER_APP_NAME":             os.Getenv("LEDGER_APP_NAME"),
		"LEDGER_APP_ENV":              os.Getenv("LEDGER_APP_ENV"),
		"LEDGER_APP_PORT":             os.Getenv("LEDGER_APP_PORT"),
		"LEDGER_DATABASE_HOST":        os.Getenv("LEDGER_DATABASE_HOST"),
		"LEDGER_DATABASE_PORT":        os.Getenv("LEDGER_DATABASE_PORT"),
		"LEDGER_DATABASE_USER":        os.Getenv("LEDGER_DATABASE_USER"),
		"LEDGER_DATABASE_PASSWORD":    os.Getenv("LEDGER_DATABASE_PASSWORD"),
		"LEDGER_DATABASE_DBNAME":      os.Getenv("LEDGER_DATABASE_DBNAME"),
		"LEDGER_DATABASE_SSLMODE":     os.Getenv("LEDGER_DATABASE_SSLMODE"),
		"LEDGER_JWT_SECRET":           os.Getenv("LEDGER_JWT_SECRET"),
		"LEDGER_HTTP_MAX_UPLOAD_SIZE": os.Getenv("LEDGER_HTTP_MAX_UPLOAD_SIZE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "credit-ledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "credit_ledger", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 8*time.Hour, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, int64(5<<20), cfg.HTTP.MaxUploadSize)
		assert.Equal(t, 5, cfg.HTTP.AuthRateLimitRequests)
		assert.Equal(t, time.Minute, cfg.HTTP.AuthRateLimitWindow)
	})

	t.Run("loads values from environment variables with LEDGER prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_APP_NAME", "test-app")
		os.Setenv("LEDGER_APP_PORT", "9000")
		os.Setenv("LEDGER_DATABASE_HOST", "testdb.local")
		os.Setenv("LEDGER_DATABASE_PORT", "5433")
		os.Setenv("LEDGER_DATABASE_USER", "testuser")
		os.Setenv("LEDGER_DATABASE_PASSWORD", "testpass")
		os.Setenv("LEDGER_DATABASE_DBNAME", "testdb")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_APP_ENV", "production")
		os.Setenv("LEDGER_DATABASE_PASSWORD", "prodpass")
		os.Setenv("LEDGER_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")

		os.Setenv("LEDGER_JWT_SECRET", "short")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")

		os.Setenv("LEDGER_JWT_SECRET", "this-is-a-sufficiently-long-secret-value")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("production rejects disabled ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("LEDGER_APP_ENV", "production")
		os.Setenv("LEDGER_JWT_SECRET", "this-is-a-sufficiently-long-secret-value")
		os.Setenv("LEDGER_DATABASE_PASSWORD", "prodpass")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "ledger",
		Password: "p@ss:word/1",
		DBName:   "credit_ledger",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "credit_ledger")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss:word/1")
}
