// Package schedule computes when recurring tournaments start and when a
// player has to be seated for a given level. All functions are pure: the
// result depends only on the event and the instant passed in.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"blindclock/internal/core/model"

	"github.com/teambition/rrule-go"
)

const (
	// BreakLength is the pause that closes every clock hour.
	BreakLength = 5 * time.Minute
	// DefaultStartingWindow is used when no window is configured.
	DefaultStartingWindow = 8 * time.Hour
)

var (
	// ErrNoWeekdays is returned for events that never recur.
	ErrNoWeekdays = errors.New("schedule: event has no weekdays")
	// ErrInvalidBlindDuration is returned for levels without length.
	ErrInvalidBlindDuration = errors.New("schedule: blind duration must be positive")
)

var rruleWeekdays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// WeeklyRule returns the weekly recurrence of event starting on the calendar
// date of anchor.
func WeeklyRule(event model.EventDefinition, anchor time.Time) (*rrule.RRule, error) {
	if len(event.Weekdays) == 0 {
		return nil, ErrNoWeekdays
	}
	days := make([]rrule.Weekday, 0, len(event.Weekdays))
	for _, day := range event.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			return nil, fmt.Errorf("schedule: weekday %d out of range", int(day))
		}
		days = append(days, rruleWeekdays[day])
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   event.StartTime.On(anchor),
		Byweekday: days,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule: build weekly rule: %w", err)
	}
	return rule, nil
}

// RRuleWeekdays returns the iCalendar day codes of event, e.g. "SU".
func RRuleWeekdays(event model.EventDefinition) []string {
	codes := make([]string, 0, len(event.Weekdays))
	for _, day := range event.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			continue
		}
		codes = append(codes, rruleWeekdays[day].String())
	}
	return codes
}

// WindowBounds returns the open interval in which starts count as current.
func WindowBounds(now time.Time, window time.Duration) (time.Time, time.Time) {
	if window <= 0 {
		window = DefaultStartingWindow
	}
	return now.Add(-window / 2), now.Add(window)
}

// CandidateWeekdays lists the distinct weekdays touched by the window.
func CandidateWeekdays(now time.Time, window time.Duration) []time.Weekday {
	start, end := WindowBounds(now, window)
	days := make([]time.Weekday, 0, 3)
	for _, instant := range []time.Time{start, now, end} {
		day := instant.Weekday()
		seen := false
		for _, existing := range days {
			if existing == day {
				seen = true
				break
			}
		}
		if !seen {
			days = append(days, day)
		}
	}
	return days
}

// IsWithinStartingRange reports whether one of the event's starts lies
// strictly inside (now - window/2, now + window).
func IsWithinStartingRange(event model.EventDefinition, now time.Time, window time.Duration) bool {
	intersects := false
	for _, day := range CandidateWeekdays(now, window) {
		if event.HasWeekday(day) {
			intersects = true
			break
		}
	}
	if !intersects {
		return false
	}

	start, end := WindowBounds(now, window)
	rule, err := WeeklyRule(event, start)
	if err != nil {
		return false
	}
	return len(rule.Between(start, end, false)) > 0
}

// NextStart resolves the start of the closest occurrence on or after the
// calendar day of now. Today counts even when its start already passed.
func NextStart(event model.EventDefinition, now time.Time) (time.Time, error) {
	rule, err := WeeklyRule(event, now)
	if err != nil {
		return time.Time{}, err
	}
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	start := rule.After(midnight, true)
	if start.IsZero() {
		return time.Time{}, fmt.Errorf("schedule: no occurrence after %s", midnight.Format(time.RFC3339))
	}
	return start, nil
}

// CalculateEnterTime returns the instant at which event.Level begins.
// Levels before it run back to back and pause for BreakLength at the end of
// every clock hour. Level 1 is the raw start time.
func CalculateEnterTime(event model.EventDefinition, now time.Time) (time.Time, error) {
	if event.BlindDuration <= 0 {
		return time.Time{}, ErrInvalidBlindDuration
	}
	start, err := NextStart(event, now)
	if err != nil {
		return time.Time{}, err
	}
	level := event.Level
	if level < 1 {
		level = 1
	}
	if level == 1 {
		return start, nil
	}
	waiting := time.Duration(float64(level-1) * event.BlindDuration * float64(time.Minute))
	return skipBreaks(start, waiting), nil
}

// skipBreaks places waiting time of play after cursor. Every iteration
// either returns or moves cursor to a top of hour; from a top of hour the
// next segment is a full hour minus the break, so waiting strictly shrinks.
func skipBreaks(cursor time.Time, waiting time.Duration) time.Time {
	for {
		nextHour := topOfHour(cursor).Add(time.Hour)
		breakStart := nextHour.Add(-BreakLength)
		if !cursor.Before(breakStart) {
			cursor = nextHour
			continue
		}
		untilBreak := breakStart.Sub(cursor)
		if waiting < untilBreak {
			return cursor.Add(waiting)
		}
		waiting -= untilBreak
		cursor = nextHour
	}
}

// InBreak reports whether instant falls into the break closing its hour.
func InBreak(instant time.Time) bool {
	return instant.Sub(topOfHour(instant)) >= time.Hour-BreakLength
}

func topOfHour(instant time.Time) time.Time {
	year, month, day := instant.Date()
	return time.Date(year, month, day, instant.Hour(), 0, 0, 0, instant.Location())
}

// DisplayName formats the label shown on a clock.
func DisplayName(event model.EventDefinition) string {
	return event.Name + " - " + event.Site + ", " + strconv.FormatFloat(event.BuyIn, 'f', -1, 64)
}
