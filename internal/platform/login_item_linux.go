//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func installLoginItem(item LoginItem) error {
	path, err := desktopEntryPath(item)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(buildDesktopEntry(item)), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	return nil
}

func removeLoginItem(item LoginItem) error {
	path, err := desktopEntryPath(item)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}

func loginItemInstalled(item LoginItem) (bool, error) {
	path, err := desktopEntryPath(item)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func desktopEntryPath(item LoginItem) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "autostart", item.slug()+".desktop"), nil
}

func buildDesktopEntry(item LoginItem) string {
	parts := []string{quoteIfSpaced(item.Exec)}
	for _, arg := range item.Args {
		parts = append(parts, quoteIfSpaced(arg))
	}

	return fmt.Sprintf(
		`[Desktop Entry]
Type=Application
Name=%s
Comment=Tournament registration clocks
Exec=%s
X-GNOME-Autostart-enabled=true
Terminal=false
`,
		item.Name,
		strings.Join(parts, " "),
	)
}
