package board

import (
	"fmt"
	"time"

	"blindclock/internal/core/clockset"
)

// formatRemaining renders a countdown as HH:MM:SS.
func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// formatTarget renders the enter time, or a dash when there is none.
func formatTarget(clock clockset.Clock) string {
	switch {
	case clock.Ended:
		return "ended"
	case !clock.HasTarget():
		return "--:--"
	default:
		return clock.Target.Format("15:04")
	}
}

// Summary returns the number of running clocks and a one-line status for
// the tray.
func Summary(clocks []clockset.Clock) (int, string) {
	running := 0
	var next *clockset.Clock
	for index := range clocks {
		clock := &clocks[index]
		if !clock.Running {
			continue
		}
		running++
		if next == nil || clock.Target.Before(next.Target) {
			next = clock
		}
	}
	if next == nil {
		return 0, "no clock running"
	}
	return running, fmt.Sprintf("%d running, next %s at %s (%s)",
		running, next.Event.Name, next.Target.Format("15:04"), formatRemaining(next.Remaining))
}
