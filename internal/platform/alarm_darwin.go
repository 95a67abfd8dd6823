//go:build darwin

package platform

func alarmCommand() []string {
	return lookupPlayer("afplay", "/System/Library/Sounds/Glass.aiff")
}
