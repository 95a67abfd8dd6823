package storage

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"blindclock/internal/ui/preferences"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Environment variables that override settings.
const (
	EnvStartingWindow = "BLINDCLOCK_STARTING_WINDOW"
	EnvTickInterval   = "BLINDCLOCK_TICK_INTERVAL"
	EnvAlertTimeout   = "BLINDCLOCK_ALERT_TIMEOUT"
	EnvNotifications  = "BLINDCLOCK_NOTIFICATIONS"
	EnvRefreshCron    = "BLINDCLOCK_REFRESH_CRON"
	EnvStoreDriver    = "BLINDCLOCK_STORE_DRIVER"
	EnvStorePath      = "BLINDCLOCK_STORE_PATH"
	EnvLogLevel       = "BLINDCLOCK_LOG_LEVEL"
)

// ErrInvalidEnv is wrapped by every ApplyEnv problem.
var ErrInvalidEnv = errors.New("invalid environment value")

// LoadDotEnv loads a .env file from the working directory when present.
// Variables already set in the process win.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides settings from BLINDCLOCK_* variables. Valid values are
// applied even when others fail; all problems are returned joined.
func ApplyEnv(settings *preferences.Settings) error {
	var problems []error
	invalid := func(name, value string) {
		problems = append(problems, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, name, value))
	}

	if value, ok := lookup(EnvStartingWindow); ok {
		if parsed, err := time.ParseDuration(value); err != nil || parsed <= 0 {
			invalid(EnvStartingWindow, value)
		} else {
			settings.StartingWindow = parsed
		}
	}
	if value, ok := lookup(EnvTickInterval); ok {
		if parsed, err := time.ParseDuration(value); err != nil || parsed <= 0 {
			invalid(EnvTickInterval, value)
		} else {
			settings.TickInterval = parsed
		}
	}
	if value, ok := lookup(EnvAlertTimeout); ok {
		if parsed, err := time.ParseDuration(value); err != nil || parsed <= 0 {
			invalid(EnvAlertTimeout, value)
		} else {
			settings.AlertTimeout = parsed
		}
	}
	if value, ok := lookup(EnvNotifications); ok {
		if parsed, err := strconv.ParseBool(value); err != nil {
			invalid(EnvNotifications, value)
		} else {
			settings.Notifications = parsed
		}
	}
	if value, ok := lookup(EnvRefreshCron); ok {
		if _, err := cron.ParseStandard(value); err != nil {
			invalid(EnvRefreshCron, value)
		} else {
			settings.RefreshCron = value
		}
	}
	if value, ok := lookup(EnvStoreDriver); ok {
		if !validStoreDriver(value) {
			invalid(EnvStoreDriver, value)
		} else {
			settings.StoreDriver = value
		}
	}
	if value, ok := lookup(EnvStorePath); ok {
		settings.StorePath = value
	}
	if value, ok := lookup(EnvLogLevel); ok {
		if _, err := zerolog.ParseLevel(value); err != nil {
			invalid(EnvLogLevel, value)
		} else {
			settings.LogLevel = value
		}
	}

	return errors.Join(problems...)
}

func lookup(name string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(name))
	return value, value != ""
}
