package board

import (
	"context"
	"testing"
	"time"

	"blindclock/internal/core/clockset"
	"blindclock/internal/core/model"

	"fyne.io/fyne/v2/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommands struct {
	played   []uuid.UUID
	stopped  []uuid.UUID
	startAll int
	stopAll  int
}

func (f *fakeCommands) Play(_ context.Context, id uuid.UUID) bool {
	f.played = append(f.played, id)
	return true
}

func (f *fakeCommands) Stop(id uuid.UUID) bool {
	f.stopped = append(f.stopped, id)
	return true
}

func (f *fakeCommands) StartAll(context.Context) int {
	f.startAll++
	return 1
}

func (f *fakeCommands) StopAll() int {
	f.stopAll++
	return 1
}

func (f *fakeCommands) Create(_ context.Context, def model.EventDefinition) (model.EventDefinition, error) {
	return def, nil
}

func (f *fakeCommands) Edit(context.Context, model.EventDefinition) error { return nil }

func (f *fakeCommands) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeCommands) Duplicate(context.Context, uuid.UUID) (model.EventDefinition, error) {
	return model.EventDefinition{}, nil
}

func (f *fakeCommands) Event(context.Context, uuid.UUID) (model.EventDefinition, error) {
	return model.EventDefinition{}, nil
}

func testClock(name string, running bool) clockset.Clock {
	target := time.Date(2022, 2, 1, 19, 0, 0, 0, time.UTC)
	clock := clockset.Clock{
		EventID:     uuid.New(),
		Event:       model.EventDefinition{Name: name},
		DisplayName: name,
		Target:      target,
		Enabled:     true,
		Running:     running,
	}
	if running {
		clock.Duration = time.Hour
		clock.Remaining = 15 * time.Minute
	}
	return clock
}

func newTestWindow(t *testing.T) (*Window, *fakeCommands, *string) {
	t.Helper()
	commands := &fakeCommands{}
	status := new(string)
	board := New(test.NewTempApp(t), commands, func(_ int, text string) {
		*status = text
	})
	return board, commands, status
}

func TestRenderKeepsOneCardPerClock(t *testing.T) {
	board, _, status := newTestWindow(t)
	first := testClock("Main", false)
	second := testClock("Turbo", false)

	board.render([]clockset.Clock{first, second})
	require.Len(t, board.grid.Objects, 2)
	firstCard := board.cards[first.EventID]

	board.render([]clockset.Clock{first})
	assert.Len(t, board.grid.Objects, 1)
	assert.Len(t, board.cards, 1)
	assert.Same(t, firstCard, board.cards[first.EventID])
	assert.Equal(t, "no clock running", *status)
}

func TestUpdateRefreshesRunningCard(t *testing.T) {
	board, _, status := newTestWindow(t)
	clock := testClock("Main", false)
	board.render([]clockset.Clock{clock})

	clock = testClock("Main", true)
	clock.EventID = board.clocks[0].EventID
	board.update([]clockset.Clock{clock})

	c := board.cards[clock.EventID]
	assert.Equal(t, "00:15:00", c.remaining.Text)
	assert.InDelta(t, 0.25, c.progress.Value, 1e-9)
	assert.Equal(t, "Stop all", board.toggle.Text)
	assert.Equal(t, "1 running, next Main at 19:00 (00:15:00)", *status)
}

func TestToggleStartsOrStopsAll(t *testing.T) {
	board, commands, _ := newTestWindow(t)

	board.render([]clockset.Clock{testClock("Main", false)})
	board.handleToggle()
	assert.Equal(t, 1, commands.startAll)
	assert.Zero(t, commands.stopAll)

	board.render([]clockset.Clock{testClock("Main", true)})
	board.handleToggle()
	assert.Equal(t, 1, commands.stopAll)
}

func TestCardTogglePlay(t *testing.T) {
	board, commands, _ := newTestWindow(t)
	idle := testClock("Main", false)
	running := testClock("Turbo", true)
	board.render([]clockset.Clock{running, idle})

	board.cards[idle.EventID].togglePlay()
	board.cards[running.EventID].togglePlay()

	assert.Equal(t, []uuid.UUID{idle.EventID}, commands.played)
	assert.Equal(t, []uuid.UUID{running.EventID}, commands.stopped)
}

func TestDisabledCardCannotPlay(t *testing.T) {
	board, _, _ := newTestWindow(t)
	clock := testClock("Main", false)
	clock.Enabled = false
	clock.Target = time.Time{}
	board.render([]clockset.Clock{clock})

	c := board.cards[clock.EventID]
	assert.True(t, c.play.Disabled())
	assert.Equal(t, "Register by --:--", c.target.Text)
}
