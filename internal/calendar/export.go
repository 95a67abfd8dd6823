// Package calendar exports events as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"blindclock/internal/core/model"
	"blindclock/internal/core/schedule"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//blindclock//tournament clocks//EN"

// Export writes one weekly recurring VEVENT per event. DTSTART is the next
// start and DTEND the instant to be seated by. Events that cannot be
// scheduled are skipped.
func Export(w io.Writer, events []model.EventDefinition, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, event := range events {
		start, err := schedule.NextStart(event, now)
		if err != nil {
			continue
		}
		enter, err := schedule.CalculateEnterTime(event, now)
		if err != nil {
			continue
		}

		vevent := cal.AddEvent(event.ID.String() + "@blindclock")
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(start)
		vevent.SetEndAt(enter)
		vevent.SetSummary(schedule.DisplayName(event))
		vevent.SetLocation(event.Site)
		vevent.SetDescription(description(event))
		vevent.SetProperty(ical.ComponentPropertyRrule,
			"FREQ=WEEKLY;BYDAY="+strings.Join(schedule.RRuleWeekdays(event), ","))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

func description(event model.EventDefinition) string {
	return fmt.Sprintf("Register by level %d (%s per level), stack %g for %g blinds.",
		event.Level, event.LevelDuration(), event.InitialStackSize, event.DesiredStackSize)
}
