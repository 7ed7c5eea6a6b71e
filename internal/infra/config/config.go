package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// Reference data sources.
const (
	ReferenceSourceBundled  = "bundled"
	ReferenceSourceFile     = "file"
	ReferenceSourceDatabase = "database"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken            string
	DatabaseURL              string
	AdminTelegramID          int64
	LogLevel                 string
	Environment              string
	CronSpecDailyDigest      string // Morning stage message to every active cycle
	CronSpecReferenceRefresh string // Periodic reload of stage reference data
	StageRecencyDays         int    // Window for the completed-milestone fallback
	ReferenceDataSource      string // bundled, file or database
	ReferenceDataPath        string // Required when ReferenceDataSource is file
	HTTPAddr                 string // Empty disables the HTTP API
	HTTPAdminToken           string
	Location                 *time.Location // Used to decide what "today" is
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDailyDigest = os.Getenv("CRON_SPEC_DAILY_DIGEST")
	if cfg.CronSpecDailyDigest == "" {
		cfg.CronSpecDailyDigest = "0 8 * * *" // Default: 8 AM daily
	}

	cfg.CronSpecReferenceRefresh = os.Getenv("CRON_SPEC_REFERENCE_REFRESH")
	if cfg.CronSpecReferenceRefresh == "" {
		cfg.CronSpecReferenceRefresh = "0 */6 * * *" // Default: every 6 hours
	}

	cfg.StageRecencyDays = 3
	if v := os.Getenv("STAGE_RECENCY_DAYS"); v != "" {
		cfg.StageRecencyDays, err = strconv.Atoi(v)
		if err != nil || cfg.StageRecencyDays < 0 {
			return nil, fmt.Errorf("invalid STAGE_RECENCY_DAYS %q: must be a non-negative integer", v)
		}
	}

	cfg.ReferenceDataSource = strings.ToLower(os.Getenv("REFERENCE_DATA_SOURCE"))
	if cfg.ReferenceDataSource == "" {
		cfg.ReferenceDataSource = ReferenceSourceBundled
	}
	cfg.ReferenceDataPath = os.Getenv("REFERENCE_DATA_PATH")
	switch cfg.ReferenceDataSource {
	case ReferenceSourceBundled, ReferenceSourceDatabase:
	case ReferenceSourceFile:
		if cfg.ReferenceDataPath == "" {
			return nil, fmt.Errorf("REFERENCE_DATA_PATH is required when REFERENCE_DATA_SOURCE=file")
		}
	default:
		return nil, fmt.Errorf("invalid REFERENCE_DATA_SOURCE %q", cfg.ReferenceDataSource)
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	cfg.HTTPAdminToken = os.Getenv("HTTP_ADMIN_TOKEN")

	cfg.Location = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		cfg.Location, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
	}

	return cfg, nil
}
