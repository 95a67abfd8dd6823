//go:build linux

package platform

import "os"

const freedesktopAlarm = "/usr/share/sounds/freedesktop/stereo/alarm-clock-elapsed.oga"

func alarmCommand() []string {
	if _, err := os.Stat(freedesktopAlarm); err == nil {
		if argv := lookupPlayer("paplay", freedesktopAlarm); argv != nil {
			return argv
		}
	}
	return lookupPlayer("canberra-gtk-play", "-i", "alarm-clock-elapsed")
}
