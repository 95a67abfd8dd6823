//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func installLoginItem(item LoginItem) error {
	output, err := exec.Command("reg", "add", registryRunKey,
		"/v", item.Name, "/t", "REG_SZ", "/d", runCommand(item), "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("reg add failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func removeLoginItem(item LoginItem) error {
	installed, err := loginItemInstalled(item)
	if err != nil || !installed {
		return err
	}
	output, err := exec.Command("reg", "delete", registryRunKey, "/v", item.Name, "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func loginItemInstalled(item LoginItem) (bool, error) {
	err := exec.Command("reg", "query", registryRunKey, "/v", item.Name).Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

func runCommand(item LoginItem) string {
	parts := []string{`"` + strings.Trim(item.Exec, `"`) + `"`}
	for _, arg := range item.Args {
		parts = append(parts, quoteIfSpaced(arg))
	}
	return strings.Join(parts, " ")
}
