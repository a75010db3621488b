package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	OrderAPIURL          string
	StaffID              string
	HTTPPort             string
	PollCronSpec         string
	PollTimeout          time.Duration
	EnrichTimeout        time.Duration
	EnrichRetryCap       int
	NotifyAllStaff       bool // false: only the actor's own items raise alerts
	RenotifyOnCorrection bool
	DatabaseURL          string // optional; empty keeps the processed set in memory
	TelegramToken        string // optional; empty disables the Telegram channel
	KitchenChatID        int64
	LogLevel             string
	Environment          string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.OrderAPIURL = strings.TrimRight(os.Getenv("ORDER_API_URL"), "/")
	if cfg.OrderAPIURL == "" {
		return nil, fmt.Errorf("ORDER_API_URL is not set")
	}

	cfg.StaffID = os.Getenv("STAFF_ID")
	if cfg.StaffID == "" {
		return nil, fmt.Errorf("STAFF_ID is not set")
	}

	cfg.HTTPPort = os.Getenv("HTTP_PORT")
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	cfg.PollCronSpec = os.Getenv("POLL_CRON_SPEC")
	if cfg.PollCronSpec == "" {
		cfg.PollCronSpec = "@every 10s" // Default polling cadence
	}

	cfg.PollTimeout, err = secondsEnv("POLL_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}

	cfg.EnrichTimeout, err = secondsEnv("ENRICH_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}

	retryCapStr := os.Getenv("ENRICH_RETRY_CAP")
	if retryCapStr == "" {
		cfg.EnrichRetryCap = 5
	} else {
		cfg.EnrichRetryCap, err = strconv.Atoi(retryCapStr)
		if err != nil || cfg.EnrichRetryCap < 1 {
			return nil, fmt.Errorf("invalid ENRICH_RETRY_CAP: %q", retryCapStr)
		}
	}

	scope := strings.ToLower(os.Getenv("NOTIFY_SCOPE"))
	switch scope {
	case "", "own":
		cfg.NotifyAllStaff = false
	case "all":
		cfg.NotifyAllStaff = true
	default:
		return nil, fmt.Errorf("invalid NOTIFY_SCOPE: %q (must be 'own' or 'all')", scope)
	}

	cfg.RenotifyOnCorrection = strings.ToLower(os.Getenv("RENOTIFY_ON_CORRECTION")) == "true"

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	chatIDStr := os.Getenv("KITCHEN_CHAT_ID")
	if chatIDStr != "" {
		cfg.KitchenChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid KITCHEN_CHAT_ID: %w", err)
		}
	}
	if cfg.TelegramToken != "" && cfg.KitchenChatID == 0 {
		return nil, fmt.Errorf("KITCHEN_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

func secondsEnv(key string, fallback int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return time.Duration(n) * time.Second, nil
}
