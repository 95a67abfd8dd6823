package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned where the OS offers no implementation.
var ErrUnsupported = errors.New("not supported on this platform")

// LoginItem describes how the app is launched when the user logs in.
type LoginItem struct {
	Name string
	Exec string
	Args []string
}

// SetLaunchAtLogin installs or removes the login item.
func SetLaunchAtLogin(item LoginItem, enabled bool) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("launch at login: app name is empty")
	}
	if !enabled {
		if err := removeLoginItem(item); err != nil {
			return fmt.Errorf("disable launch at login: %w", err)
		}
		return nil
	}
	if item.Exec == "" {
		return fmt.Errorf("enable launch at login: exec path is empty")
	}
	if err := installLoginItem(item); err != nil {
		return fmt.Errorf("enable launch at login: %w", err)
	}
	return nil
}

// LaunchAtLogin reports whether the login item is installed.
func LaunchAtLogin(item LoginItem) (bool, error) {
	return loginItemInstalled(item)
}

func (item LoginItem) slug() string {
	name := strings.ToLower(strings.TrimSpace(item.Name))
	return strings.ReplaceAll(name, " ", "-")
}

func quoteIfSpaced(value string) string {
	if strings.Contains(value, " ") && !strings.HasPrefix(value, `"`) {
		return `"` + value + `"`
	}
	return value
}
