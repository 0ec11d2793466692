package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CB_DB_PATH", t.TempDir()+"/bot.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 2*time.Minute, cfg.ScanInterval)
	assert.Equal(t, 5*time.Minute, cfg.EnforceInterval)
	assert.Equal(t, 24*time.Hour, cfg.ScanWindow)
	assert.Empty(t, cfg.NotifyURLs)
	assert.Zero(t, cfg.BotAccountID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CB_DB_PATH", t.TempDir()+"/bot.db")
	t.Setenv("CB_ENV", "production")
	t.Setenv("CB_INSTANCE", "lemmy.example.org")
	t.Setenv("CB_BOT_ACCOUNT_ID", "1234")
	t.Setenv("CB_SCAN_INTERVAL", "30s")
	t.Setenv("CB_NOTIFY_URLS", "matrix://u:p@host/!room, discord://token@id")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "lemmy.example.org", cfg.Instance)
	assert.Equal(t, int64(1234), cfg.BotAccountID)
	assert.Equal(t, 30*time.Second, cfg.ScanInterval)
	assert.Equal(t, []string{"matrix://u:p@host/!room", "discord://token@id"}, cfg.NotifyURLs)
}

func TestLoadRejectsBadAccountID(t *testing.T) {
	t.Setenv("CB_DB_PATH", t.TempDir()+"/bot.db")
	t.Setenv("CB_BOT_ACCOUNT_ID", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}
