package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"blindclock/internal/ui/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverridesSettings(t *testing.T) {
	t.Setenv(EnvStartingWindow, "4h")
	t.Setenv(EnvTickInterval, "1s")
	t.Setenv(EnvAlertTimeout, "2m")
	t.Setenv(EnvNotifications, "false")
	t.Setenv(EnvRefreshCron, "0 * * * *")
	t.Setenv(EnvStoreDriver, "sqlite")
	t.Setenv(EnvStorePath, "/tmp/blindclock.db")
	t.Setenv(EnvLogLevel, "warn")

	settings := preferences.DefaultSettings()
	require.NoError(t, ApplyEnv(&settings))

	assert.Equal(t, 4*time.Hour, settings.StartingWindow)
	assert.Equal(t, time.Second, settings.TickInterval)
	assert.Equal(t, 2*time.Minute, settings.AlertTimeout)
	assert.False(t, settings.Notifications)
	assert.Equal(t, "0 * * * *", settings.RefreshCron)
	assert.Equal(t, preferences.StoreDriverSQLite, settings.StoreDriver)
	assert.Equal(t, "/tmp/blindclock.db", settings.StorePath)
	assert.Equal(t, "warn", settings.LogLevel)
}

func TestApplyEnvReportsEveryInvalidVariable(t *testing.T) {
	t.Setenv(EnvStartingWindow, "eight hours")
	t.Setenv(EnvStoreDriver, "mysql")
	t.Setenv(EnvTickInterval, "500ms")

	settings := preferences.DefaultSettings()
	err := ApplyEnv(&settings)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEnv)
	assert.Contains(t, err.Error(), EnvStartingWindow)
	assert.Contains(t, err.Error(), EnvStoreDriver)

	assert.Equal(t, 8*time.Hour, settings.StartingWindow)
	assert.Equal(t, preferences.StoreDriverYAML, settings.StoreDriver)
	assert.Equal(t, 500*time.Millisecond, settings.TickInterval)
}

func TestLoadDotEnvMissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvDoesNotOverrideProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvLogLevel+"=debug\n"), 0o644))
	t.Setenv(EnvLogLevel, "error")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "error", os.Getenv(EnvLogLevel))
}
