//go:build !linux && !darwin && !windows

package platform

func alarmCommand() []string { return nil }
