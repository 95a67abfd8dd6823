//go:build !linux && !darwin && !windows

package platform

func installLoginItem(LoginItem) error { return ErrUnsupported }

func removeLoginItem(LoginItem) error { return nil }

func loginItemInstalled(LoginItem) (bool, error) { return false, nil }
