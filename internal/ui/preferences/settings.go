package preferences

import (
	"time"

	"blindclock/internal/core/model"
)

// Store drivers understood by storage.OpenEventStore.
const (
	StoreDriverYAML   = "yaml"
	StoreDriverSQLite = "sqlite"
)

// Settings defines editable user preferences.
type Settings struct {
	StartingWindow time.Duration
	TickInterval   time.Duration
	AlertTimeout   time.Duration
	Notifications  bool

	// RefreshCron is the standard five-field cron spec for rebuilding clocks.
	RefreshCron string
	StoreDriver string
	// StorePath overrides the location of the event store. Empty means the
	// user config directory.
	StorePath string
	LogLevel  string

	LaunchAtLogin bool
}

// DefaultSettings returns default settings for blindclock.
func DefaultSettings() Settings {
	return Settings{
		StartingWindow: 8 * time.Hour,
		TickInterval:   200 * time.Millisecond,
		AlertTimeout:   time.Minute,
		Notifications:  true,
		RefreshCron:    "* * * * *",
		StoreDriver:    StoreDriverYAML,
		LogLevel:       "info",
	}
}

// TimeKeeperConfig converts settings to TimeKeeperConfig.
func (settings Settings) TimeKeeperConfig() model.TimeKeeperConfig {
	return model.TimeKeeperConfig{
		StartingWindow: settings.StartingWindow,
	}
}
