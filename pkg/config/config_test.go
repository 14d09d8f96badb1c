package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geckobot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
telegram:
  token: "123456:test-token"
  users: [1001, 1002]
  new_coins_channel: -100200300
  log_channel: -100200301
coingecko:
  api_key: demo-key
watch:
  interval: 30m
storage:
  driver: sqlite
  path: ./overrides.sqlite
binance:
  enabled: true
  api_key: bk
  secret_key: bs
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "123456:test-token", settings.Telegram.Token)
	assert.Equal(t, []int{1001, 1002}, settings.Telegram.Users)
	assert.Equal(t, int64(-100200300), settings.Telegram.NewCoinsChannel)
	assert.Equal(t, int64(-100200301), settings.Telegram.LogChannel)
	assert.Equal(t, "demo-key", settings.CoinGecko.APIKey)
	assert.Equal(t, 30*time.Minute, settings.Watch.Interval)
	assert.Equal(t, "sqlite", settings.Storage.Driver)
	assert.True(t, settings.Binance.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, time.Hour, settings.Watch.Interval)
	assert.Equal(t, "memory", settings.Storage.Driver)
	assert.Empty(t, settings.Telegram.Users)
	assert.Zero(t, settings.Telegram.NewCoinsChannel)
}

func TestLoadFromEnvironmentOnly(t *testing.T) {
	t.Setenv("GECKOBOT_TELEGRAM_TOKEN", "123456:env-token")
	t.Setenv("GECKOBOT_WATCH_INTERVAL", "30m")
	t.Setenv("GECKOBOT_STORAGE_DRIVER", "buntdb")

	// no config file at all, everything comes from the environment
	settings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "123456:env-token", settings.Telegram.Token)
	assert.Equal(t, 30*time.Minute, settings.Watch.Interval)
	assert.Equal(t, "buntdb", settings.Storage.Driver)
}

func TestLoadEnvironmentBeatsFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:file-token"
watch:
  interval: 2h
`)

	t.Setenv("GECKOBOT_TELEGRAM_TOKEN", "123456:env-token")
	t.Setenv("GECKOBOT_WATCH_INTERVAL", "45m")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123456:env-token", settings.Telegram.Token)
	assert.Equal(t, 45*time.Minute, settings.Watch.Interval)
}

func TestLoadCompactDuration(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
watch:
  interval: 1d12h
`)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 36*time.Hour, settings.Watch.Interval)
}

func TestLoadRejectsMissingToken(t *testing.T) {
	path := writeConfig(t, `
log_level: info
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "telegram token")
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
watch:
  interval: soon
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid watch interval")
}

func TestLoadRejectsTooShortInterval(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
watch:
  interval: 5s
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "below the one minute floor")
}
