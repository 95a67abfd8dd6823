package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidEvent marks every validation failure of an EventDefinition.
var ErrInvalidEvent = errors.New("invalid event")

// TimeOfDay is a local wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: expected HH:MM", value)
	}
	hour, err := strconv.Atoi(hours)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	minute, err := strconv.Atoi(minutes)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	tod := TimeOfDay{Hour: hour, Minute: minute}
	if !tod.Valid() {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: out of range", value)
	}
	return tod, nil
}

// Valid reports whether the hour and minute are in range.
func (tod TimeOfDay) Valid() bool {
	return tod.Hour >= 0 && tod.Hour < 24 && tod.Minute >= 0 && tod.Minute < 60
}

// String formats the time as "HH:MM".
func (tod TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", tod.Hour, tod.Minute)
}

// On returns the instant of this time of day on the calendar date of day.
func (tod TimeOfDay) On(day time.Time) time.Time {
	year, month, date := day.Date()
	return time.Date(year, month, date, tod.Hour, tod.Minute, 0, 0, day.Location())
}

// EventDefinition is a recurring weekly tournament.
type EventDefinition struct {
	ID    uuid.UUID
	Name  string
	Site  string
	BuyIn float64

	// Weekdays on which the tournament runs.
	Weekdays  []time.Weekday
	StartTime TimeOfDay

	InitialStackSize float64
	DesiredStackSize float64
	Blind            float64

	// Level is the 1-based level the player wants to be seated by.
	Level int
	// BlindDuration is the length of one level in minutes.
	BlindDuration float64
}

// Validate checks the invariants every stored definition must hold.
func (def EventDefinition) Validate() error {
	var errs []error
	if len(def.Weekdays) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one weekday is required", ErrInvalidEvent))
	}
	for _, day := range def.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			errs = append(errs, fmt.Errorf("%w: weekday %d out of range", ErrInvalidEvent, int(day)))
		}
	}
	if !def.StartTime.Valid() {
		errs = append(errs, fmt.Errorf("%w: start time %s out of range", ErrInvalidEvent, def.StartTime))
	}
	if def.Level < 1 {
		errs = append(errs, fmt.Errorf("%w: level must be at least 1", ErrInvalidEvent))
	}
	if def.BlindDuration <= 0 {
		errs = append(errs, fmt.Errorf("%w: blind duration must be positive", ErrInvalidEvent))
	}
	if def.InitialStackSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: initial stack size must be positive", ErrInvalidEvent))
	}
	if def.DesiredStackSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: desired stack size must be positive", ErrInvalidEvent))
	}
	return errors.Join(errs...)
}

// HasWeekday reports whether the event runs on day.
func (def EventDefinition) HasWeekday(day time.Weekday) bool {
	for _, candidate := range def.Weekdays {
		if candidate == day {
			return true
		}
	}
	return false
}

// LevelDuration returns BlindDuration as a time.Duration.
func (def EventDefinition) LevelDuration() time.Duration {
	return time.Duration(def.BlindDuration * float64(time.Minute))
}

// WithDesiredStackSize sets the desired stack and recomputes the blind.
func (def EventDefinition) WithDesiredStackSize(value float64) EventDefinition {
	def.DesiredStackSize = value
	if def.InitialStackSize > 0 && value > 0 {
		def.Blind = def.InitialStackSize / value
	}
	return def
}

// WithBlind sets the blind and recomputes the desired stack.
func (def EventDefinition) WithBlind(value float64) EventDefinition {
	def.Blind = value
	if def.InitialStackSize > 0 && value > 0 {
		def.DesiredStackSize = def.InitialStackSize / value
	}
	return def
}

// Clone returns a copy that shares no slices with def.
func (def EventDefinition) Clone() EventDefinition {
	def.Weekdays = append([]time.Weekday(nil), def.Weekdays...)
	return def
}
