package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/ivf?sslmode=disable")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")
	for _, k := range []string{
		"LOG_LEVEL", "ENVIRONMENT", "CRON_SPEC_DAILY_DIGEST", "CRON_SPEC_REFERENCE_REFRESH",
		"STAGE_RECENCY_DAYS", "REFERENCE_DATA_SOURCE", "REFERENCE_DATA_PATH", "HTTP_ADDR",
		"HTTP_ADMIN_TOKEN", "TIMEZONE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, int64(42), cfg.AdminTelegramID)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, "0 8 * * *", cfg.CronSpecDailyDigest)
		assert.Equal(t, 3, cfg.StageRecencyDays)
		assert.Equal(t, ReferenceSourceBundled, cfg.ReferenceDataSource)
		assert.Equal(t, time.Local, cfg.Location)
	})

	t.Run("Overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("STAGE_RECENCY_DAYS", "5")
		t.Setenv("REFERENCE_DATA_SOURCE", "file")
		t.Setenv("REFERENCE_DATA_PATH", "/etc/ivf/stages.yaml")
		t.Setenv("TIMEZONE", "UTC")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 5, cfg.StageRecencyDays)
		assert.Equal(t, "/etc/ivf/stages.yaml", cfg.ReferenceDataPath)
		assert.Equal(t, "UTC", cfg.Location.String())
	})

	t.Run("MissingToken", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TELEGRAM_TOKEN", "")

		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, "TELEGRAM_TOKEN is not set", err.Error())
	})

	t.Run("BadAdminID", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ADMIN_TELEGRAM_ID", "admin")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid ADMIN_TELEGRAM_ID")
	})

	t.Run("NegativeRecency", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STAGE_RECENCY_DAYS", "-1")

		_, err := Load()
		assert.ErrorContains(t, err, "STAGE_RECENCY_DAYS")
	})

	t.Run("FileSourceWithoutPath", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REFERENCE_DATA_SOURCE", "file")

		_, err := Load()
		assert.ErrorContains(t, err, "REFERENCE_DATA_PATH")
	})

	t.Run("UnknownSource", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REFERENCE_DATA_SOURCE", "s3")

		_, err := Load()
		assert.ErrorContains(t, err, "REFERENCE_DATA_SOURCE")
	})
}
