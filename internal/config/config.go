package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment string
	HTTPPort    string

	// Lemmy instance hostname (no scheme), e.g. "lemmy.zip".
	Instance     string
	BotUsername  string
	BotPassword  string
	BotAccountID int64

	DatabasePath string
	LogDir       string

	// How often the post scanner and the enforcement tick run.
	ScanInterval    time.Duration
	EnforceInterval time.Duration

	// How far back a post may be before it is considered abandoned by the scanner.
	ScanWindow time.Duration

	// Shoutrrr URLs for operator alerts (comma separated), e.g. a Matrix room.
	NotifyURLs []string
}

// Load reads env vars and falls back to defaults so the bot can boot with minimal configuration.
// Instance and bot credentials have no useful defaults and are validated by the caller
// before anything talks to the platform.
func Load() (Config, error) {
	cfg := Config{
		Environment:     getEnv("CB_ENV", "development"),
		HTTPPort:        getEnv("CB_HTTP_PORT", "8080"),
		Instance:        getEnv("CB_INSTANCE", ""),
		BotUsername:     getEnv("CB_BOT_USERNAME", ""),
		BotPassword:     getEnv("CB_BOT_PASSWORD", ""),
		DatabasePath:    getEnv("CB_DB_PATH", filepath.Join("data", "community-bot.db")),
		LogDir:          getEnv("CB_LOG_DIR", filepath.Join("data", "logs")),
		ScanInterval:    getDuration("CB_SCAN_INTERVAL", 2*time.Minute),
		EnforceInterval: getDuration("CB_ENFORCE_INTERVAL", 5*time.Minute),
		ScanWindow:      getDuration("CB_SCAN_WINDOW", 24*time.Hour),
	}

	if raw := os.Getenv("CB_BOT_ACCOUNT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse CB_BOT_ACCOUNT_ID: %w", err)
		}
		cfg.BotAccountID = id
	}

	if raw := os.Getenv("CB_NOTIFY_URLS"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.NotifyURLs = append(cfg.NotifyURLs, u)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return fallback
}
