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

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveAndLoadSettings(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	settings := preferences.DefaultSettings()
	settings.StartingWindow = 6 * time.Hour
	settings.TickInterval = time.Second
	settings.AlertTimeout = 30 * time.Second
	settings.Notifications = false
	settings.RefreshCron = "*/5 * * * *"
	settings.StoreDriver = preferences.StoreDriverSQLite
	settings.StorePath = "/data/events.db"
	settings.LogLevel = "debug"
	settings.LaunchAtLogin = true

	require.NoError(t, SaveSettings("blindclock-test", settings))
	loaded, err := LoadSettings("blindclock-test")
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadSettingsFallsBackOnInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := []byte(`
starting_window_minutes: -5
tick_interval_ms: 0
refresh_cron: "whenever"
store_driver: postgres
log_level: loud
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestLoadSettingsRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("starting_window_minutes: [1"), 0o644))

	settings, err := LoadSettingsFile(path)
	assert.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.yaml")
	require.NoError(t, writeFileAtomic(path, []byte("a: 1\n")))
	require.NoError(t, writeFileAtomic(path, []byte("a: 2\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
