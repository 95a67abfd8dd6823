package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blindclock/internal/ui/preferences"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	StartingWindowMinutes int    `yaml:"starting_window_minutes"`
	TickIntervalMillis    int    `yaml:"tick_interval_ms"`
	AlertTimeoutSeconds   int    `yaml:"alert_timeout_seconds"`
	Notifications         *bool  `yaml:"notifications,omitempty"`
	RefreshCron           string `yaml:"refresh_cron"`
	StoreDriver           string `yaml:"store_driver"`
	StorePath             string `yaml:"store_path,omitempty"`
	LogLevel              string `yaml:"log_level"`
	LaunchAtLogin         bool   `yaml:"launch_at_login"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configDir, err := ConfigDir(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(filepath.Join(configDir, settingsFileName))
}

// LoadSettingsFile reads preferences from path. Values that are missing or
// invalid fall back to the defaults.
func LoadSettingsFile(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configDir, err := ConfigDir(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(filepath.Join(configDir, settingsFileName), settings)
}

// SaveSettingsFile writes preferences to path.
func SaveSettingsFile(path string, settings preferences.Settings) error {
	notifications := settings.Notifications
	fileData := yamlSettings{
		StartingWindowMinutes: int(settings.StartingWindow / time.Minute),
		TickIntervalMillis:    int(settings.TickInterval / time.Millisecond),
		AlertTimeoutSeconds:   int(settings.AlertTimeout / time.Second),
		Notifications:         &notifications,
		RefreshCron:           settings.RefreshCron,
		StoreDriver:           settings.StoreDriver,
		StorePath:             settings.StorePath,
		LogLevel:              settings.LogLevel,
		LaunchAtLogin:         settings.LaunchAtLogin,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := writeFileAtomic(path, serialized); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// ConfigDir returns the per-user directory holding blindclock files.
func ConfigDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.StartingWindowMinutes > 0 {
		settings.StartingWindow = time.Duration(fileData.StartingWindowMinutes) * time.Minute
	}
	if fileData.TickIntervalMillis > 0 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMillis) * time.Millisecond
	}
	if fileData.AlertTimeoutSeconds > 0 {
		settings.AlertTimeout = time.Duration(fileData.AlertTimeoutSeconds) * time.Second
	}
	if fileData.Notifications != nil {
		settings.Notifications = *fileData.Notifications
	}
	if fileData.RefreshCron != "" {
		if _, err := cron.ParseStandard(fileData.RefreshCron); err == nil {
			settings.RefreshCron = fileData.RefreshCron
		}
	}
	if validStoreDriver(fileData.StoreDriver) {
		settings.StoreDriver = fileData.StoreDriver
	}
	settings.StorePath = fileData.StorePath
	if _, err := zerolog.ParseLevel(fileData.LogLevel); err == nil && fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	settings.LaunchAtLogin = fileData.LaunchAtLogin
}

func validStoreDriver(driver string) bool {
	return driver == preferences.StoreDriverYAML || driver == preferences.StoreDriverSQLite
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".blindclock-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
