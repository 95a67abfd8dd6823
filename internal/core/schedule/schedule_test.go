package schedule

import (
	"testing"
	"time"

	"blindclock/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2022-02-01 is a Tuesday.
var referenceNow = time.Date(2022, 2, 1, 18, 0, 0, 0, time.UTC)

func tournament() model.EventDefinition {
	return model.EventDefinition{
		Name:             "name",
		Site:             "site",
		BuyIn:            1,
		Weekdays:         []time.Weekday{time.Tuesday},
		StartTime:        model.TimeOfDay{Hour: 19},
		InitialStackSize: 10000,
		DesiredStackSize: 20,
		Blind:            10,
		Level:            10,
		BlindDuration:    10,
	}
}

func clockTime(t *testing.T, instant time.Time) string {
	t.Helper()
	return instant.Format("15:04")
}

func TestCalculateEnterTimeCrossesOneBreak(t *testing.T) {
	enter, err := CalculateEnterTime(tournament(), referenceNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 2, 1, 20, 35, 0, 0, time.UTC), enter)
}

func TestCalculateEnterTimeSnapsStartOutOfBreak(t *testing.T) {
	event := tournament()
	event.StartTime = model.TimeOfDay{Hour: 19, Minute: 57}

	enter, err := CalculateEnterTime(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, "21:35", clockTime(t, enter))
}

func TestCalculateEnterTimeFirstLevelIsStartTime(t *testing.T) {
	for _, duration := range []float64{0.1, 10, 45} {
		event := tournament()
		event.Level = 1
		event.BlindDuration = duration

		enter, err := CalculateEnterTime(event, referenceNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 2, 1, 19, 0, 0, 0, time.UTC), enter)
	}
}

func TestCalculateEnterTimeClampsLevelBelowOne(t *testing.T) {
	event := tournament()
	event.Level = -3

	enter, err := CalculateEnterTime(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, "19:00", clockTime(t, enter))
}

func TestCalculateEnterTimeResolvesNextWeekday(t *testing.T) {
	event := tournament()
	event.Weekdays = []time.Weekday{time.Sunday}

	enter, err := CalculateEnterTime(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 2, 6, 20, 35, 0, 0, time.UTC), enter)
}

func TestCalculateEnterTimeWrapsToNextWeek(t *testing.T) {
	event := tournament()
	event.Weekdays = []time.Weekday{time.Monday}

	start, err := NextStart(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 2, 7, 19, 0, 0, 0, time.UTC), start)
}

func TestNextStartKeepsTodayAfterStartPassed(t *testing.T) {
	event := tournament()
	event.StartTime = model.TimeOfDay{Hour: 9}

	start, err := NextStart(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 2, 1, 9, 0, 0, 0, time.UTC), start)
}

func TestCalculateEnterTimeLandingOnBreakStartMovesToNextHour(t *testing.T) {
	event := tournament()
	event.Level = 12
	event.BlindDuration = 5

	// 55 minutes of play end exactly when the break begins.
	enter, err := CalculateEnterTime(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, "20:00", clockTime(t, enter))
}

func TestCalculateEnterTimeFractionalDuration(t *testing.T) {
	event := tournament()
	event.Level = 2
	event.BlindDuration = 0.5

	enter, err := CalculateEnterTime(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 2, 1, 19, 0, 30, 0, time.UTC), enter)
}

func TestCalculateEnterTimeRejectsInvalidInput(t *testing.T) {
	event := tournament()
	event.Weekdays = nil
	_, err := CalculateEnterTime(event, referenceNow)
	assert.ErrorIs(t, err, ErrNoWeekdays)

	event = tournament()
	event.BlindDuration = 0
	_, err = CalculateEnterTime(event, referenceNow)
	assert.ErrorIs(t, err, ErrInvalidBlindDuration)
}

func TestCalculateEnterTimeNeverLandsInBreak(t *testing.T) {
	durations := []float64{0.1, 1, 2.5, 7, 10, 12, 15, 20, 30, 60}
	for minute := 0; minute < 60; minute++ {
		for _, duration := range durations {
			for level := 2; level <= 30; level++ {
				event := tournament()
				event.StartTime = model.TimeOfDay{Hour: 19, Minute: minute}
				event.BlindDuration = duration
				event.Level = level

				enter, err := CalculateEnterTime(event, referenceNow)
				require.NoError(t, err)
				require.Falsef(t, InBreak(enter), "start 19:%02d level %d duration %v landed at %s",
					minute, level, duration, enter.Format("15:04:05"))
			}
		}
	}
}

func TestCalculateEnterTimeIsIdempotent(t *testing.T) {
	event := tournament()
	first, err := CalculateEnterTime(event, referenceNow)
	require.NoError(t, err)
	second, err := CalculateEnterTime(event, referenceNow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculateEnterTimeIsMonotonicInLevel(t *testing.T) {
	for _, minute := range []int{0, 30, 54, 55, 57} {
		event := tournament()
		event.StartTime = model.TimeOfDay{Hour: 19, Minute: minute}
		var previous time.Time
		for level := 1; level <= 40; level++ {
			event.Level = level
			enter, err := CalculateEnterTime(event, referenceNow)
			require.NoError(t, err)
			require.Falsef(t, enter.Before(previous), "level %d went backwards", level)
			previous = enter
		}
	}
}

func TestCandidateWeekdays(t *testing.T) {
	assert.Equal(t, []time.Weekday{time.Tuesday, time.Wednesday}, CandidateWeekdays(referenceNow, 8*time.Hour))

	earlyMorning := time.Date(2022, 2, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday}, CandidateWeekdays(earlyMorning, 8*time.Hour))

	noon := time.Date(2022, 2, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, []time.Weekday{time.Tuesday}, CandidateWeekdays(noon, 8*time.Hour))
}

func TestIsWithinStartingRange(t *testing.T) {
	cases := []struct {
		name     string
		weekdays []time.Weekday
		start    model.TimeOfDay
		want     bool
	}{
		{"later today", []time.Weekday{time.Tuesday}, model.TimeOfDay{Hour: 19}, true},
		{"started within lookback", []time.Weekday{time.Tuesday}, model.TimeOfDay{Hour: 15}, true},
		{"started before lookback", []time.Weekday{time.Tuesday}, model.TimeOfDay{Hour: 3}, false},
		{"after midnight inside window", []time.Weekday{time.Wednesday}, model.TimeOfDay{Hour: 1}, true},
		{"tomorrow beyond window", []time.Weekday{time.Wednesday}, model.TimeOfDay{Hour: 3}, false},
		{"window end is exclusive", []time.Weekday{time.Wednesday}, model.TimeOfDay{Hour: 2}, false},
		{"weekday outside window", []time.Weekday{time.Sunday, time.Friday}, model.TimeOfDay{Hour: 19}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := tournament()
			event.Weekdays = tc.weekdays
			event.StartTime = tc.start
			assert.Equal(t, tc.want, IsWithinStartingRange(event, referenceNow, 8*time.Hour))
		})
	}
}

func TestIsWithinStartingRangeFalseWithoutCandidateWeekday(t *testing.T) {
	candidates := CandidateWeekdays(referenceNow, DefaultStartingWindow)
	for day := time.Sunday; day <= time.Saturday; day++ {
		inCandidates := false
		for _, candidate := range candidates {
			if candidate == day {
				inCandidates = true
			}
		}
		if inCandidates {
			continue
		}
		for hour := 0; hour < 24; hour++ {
			event := tournament()
			event.Weekdays = []time.Weekday{day}
			event.StartTime = model.TimeOfDay{Hour: hour}
			assert.False(t, IsWithinStartingRange(event, referenceNow, 0))
		}
	}
}

func TestInBreak(t *testing.T) {
	assert.False(t, InBreak(time.Date(2022, 2, 1, 19, 54, 59, 0, time.UTC)))
	assert.True(t, InBreak(time.Date(2022, 2, 1, 19, 55, 0, 0, time.UTC)))
	assert.True(t, InBreak(time.Date(2022, 2, 1, 19, 59, 59, 0, time.UTC)))
	assert.False(t, InBreak(time.Date(2022, 2, 1, 20, 0, 0, 0, time.UTC)))
}

func TestDisplayName(t *testing.T) {
	event := tournament()
	event.Name = "Bounty Builder"
	event.Site = "stars"
	event.BuyIn = 5.5
	assert.Equal(t, "Bounty Builder - stars, 5.5", DisplayName(event))

	event.BuyIn = 109
	assert.Equal(t, "Bounty Builder - stars, 109", DisplayName(event))
}

func TestRRuleWeekdays(t *testing.T) {
	event := tournament()
	event.Weekdays = []time.Weekday{time.Sunday, time.Wednesday}
	assert.Equal(t, []string{"SU", "WE"}, RRuleWeekdays(event))
}
