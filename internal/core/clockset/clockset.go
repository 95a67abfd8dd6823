// Package clockset derives the countdown view-models shown for every
// tournament from the stored definitions and the current instant.
package clockset

import (
	"slices"
	"time"

	"blindclock/internal/core/model"
	"blindclock/internal/core/schedule"

	"github.com/google/uuid"
)

// AlertHandle owns a scheduled end-of-countdown alert.
type AlertHandle interface {
	// Cancel releases the alert. Cancelling twice or after it fired is a no-op.
	Cancel()
}

// Clock is the countdown for one tournament.
type Clock struct {
	EventID     uuid.UUID
	Event       model.EventDefinition
	DisplayName string

	// Target is the instant to be seated by; zero when the event is not
	// current.
	Target  time.Time
	Enabled bool
	Running bool
	Ended   bool

	StartedAt time.Time
	Duration  time.Duration
	Remaining time.Duration

	// Alert is set only while Running.
	Alert AlertHandle
}

// HasTarget reports whether the clock has a target instant.
func (clock Clock) HasTarget() bool {
	return !clock.Target.IsZero()
}

// Progress returns the remaining fraction of the countdown.
func (clock Clock) Progress() float64 {
	if clock.Duration <= 0 {
		return 0
	}
	progress := float64(clock.Remaining) / float64(clock.Duration)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// Rebuild derives a fresh, sorted clock list. Running state is carried
// over from previous by event ID for clocks that are still enabled. A running
// clock whose schedule did not change keeps its target even after it left
// the starting window or the target passed; the pulse ends it. Alert handles
// that lost their owner are returned in released and must be cancelled by
// the caller.
func Rebuild(events []model.EventDefinition, now time.Time, window time.Duration, previous []Clock) (clocks []Clock, released []AlertHandle) {
	byID := make(map[uuid.UUID]Clock, len(previous))
	for _, clock := range previous {
		byID[clock.EventID] = clock
	}

	clocks = make([]Clock, 0, len(events))
	for _, event := range events {
		clock := Clock{
			EventID:     event.ID,
			Event:       event.Clone(),
			DisplayName: schedule.DisplayName(event),
		}
		if schedule.IsWithinStartingRange(event, now, window) {
			target, err := schedule.CalculateEnterTime(event, now)
			if err == nil && !target.Before(now) {
				clock.Target = target
				clock.Enabled = true
			}
		}

		if old, ok := byID[event.ID]; ok {
			delete(byID, event.ID)
			if old.Running {
				if !clock.Enabled && old.HasTarget() && sameSchedule(old.Event, event) {
					// A countdown outlives the starting window it was started in.
					clock.Target = old.Target
					clock.Enabled = true
				}
				if clock.Enabled {
					clock.Running = true
					clock.StartedAt = old.StartedAt
					clock.Duration = clock.Target.Sub(old.StartedAt)
					clock.Remaining = clock.Target.Sub(now)
					clock.Alert = old.Alert
				} else if old.Alert != nil {
					released = append(released, old.Alert)
				}
			}
		}
		clocks = append(clocks, clock)
	}

	for _, orphan := range byID {
		if orphan.Alert != nil {
			released = append(released, orphan.Alert)
		}
	}

	Sort(clocks)
	return clocks, released
}

// sameSchedule reports whether both definitions resolve to the same enter
// time.
func sameSchedule(a, b model.EventDefinition) bool {
	return slices.Equal(a.Weekdays, b.Weekdays) &&
		a.StartTime == b.StartTime &&
		a.Level == b.Level &&
		a.BlindDuration == b.BlindDuration
}

// Sort orders targeted clocks by ascending target and puts clocks without a
// target last, keeping their relative order.
func Sort(clocks []Clock) {
	slices.SortStableFunc(clocks, func(a, b Clock) int {
		switch {
		case a.HasTarget() && b.HasTarget():
			return a.Target.Compare(b.Target)
		case a.HasTarget():
			return -1
		case b.HasTarget():
			return 1
		default:
			return 0
		}
	})
}
