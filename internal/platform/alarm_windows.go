//go:build windows

package platform

func alarmCommand() []string {
	return lookupPlayer("powershell", "-NoProfile", "-NonInteractive", "-Command",
		"[System.Media.SystemSounds]::Exclamation.Play(); Start-Sleep -Milliseconds 800")
}
