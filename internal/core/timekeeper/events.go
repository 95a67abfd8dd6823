package timekeeper

import (
	"time"

	"blindclock/internal/core/clockset"

	"github.com/google/uuid"
)

// EventType defines the type of engine event.
type EventType string

const (
	// EventClocksChanged is sent when clocks were added, removed, reordered,
	// started or stopped.
	EventClocksChanged EventType = "clocks_changed"
	// EventProgress is sent on every pulse while clocks run.
	EventProgress EventType = "progress"
	// EventClockEnded is sent when a running countdown reached zero.
	EventClockEnded EventType = "clock_ended"
	// EventAlert is sent when the alert for a clock was raised.
	EventAlert EventType = "alert"
	// EventWarning carries a problem the user should see.
	EventWarning EventType = "warning"
)

// Event represents an engine update for observers.
type Event struct {
	Type    EventType
	ClockID uuid.UUID
	Clocks  []clockset.Clock
	Message string
	At      time.Time
}
