// Package board renders the clock board window.
package board

import (
	"context"

	"blindclock/internal/core/clockset"
	"blindclock/internal/core/model"
	"blindclock/internal/core/timekeeper"
	"blindclock/internal/ui/editor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Commands are the board actions the window triggers.
type Commands interface {
	Play(ctx context.Context, id uuid.UUID) bool
	Stop(id uuid.UUID) bool
	StartAll(ctx context.Context) int
	StopAll() int
	Create(ctx context.Context, def model.EventDefinition) (model.EventDefinition, error)
	Edit(ctx context.Context, def model.EventDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	Duplicate(ctx context.Context, id uuid.UUID) (model.EventDefinition, error)
	Event(ctx context.Context, id uuid.UUID) (model.EventDefinition, error)
}

// Window shows one card per clock.
type Window struct {
	app      fyne.App
	window   fyne.Window
	commands Commands
	grid     *fyne.Container
	toggle   *widget.Button
	status   *widget.Label
	cards    map[uuid.UUID]*card
	clocks   []clockset.Clock
	onStatus func(running int, status string)
}

// New creates the board window.
func New(app fyne.App, commands Commands, onStatus func(running int, status string)) *Window {
	board := &Window{
		app:      app,
		window:   app.NewWindow("Blind Clock"),
		commands: commands,
		grid:     container.NewGridWrap(fyne.NewSize(280, 190)),
		status:   widget.NewLabel(""),
		cards:    make(map[uuid.UUID]*card),
		onStatus: onStatus,
	}
	board.toggle = widget.NewButtonWithIcon("Start all", theme.MediaPlayIcon(), board.handleToggle)

	add := widget.NewButtonWithIcon("New clock", theme.ContentAddIcon(), func() {
		board.openEditor(model.EventDefinition{Level: 1})
	})
	bottom := container.NewHBox(add, board.status, layout.NewSpacer(), board.toggle)

	board.window.SetContent(container.NewBorder(nil, bottom, nil, nil, container.NewVScroll(board.grid)))
	board.window.Resize(fyne.NewSize(900, 600))
	board.window.SetCloseIntercept(board.window.Hide)
	return board
}

// Show displays the board.
func (board *Window) Show() {
	board.window.Show()
	board.window.RequestFocus()
}

// Follow renders engine events until the channel closes.
func (board *Window) Follow(events <-chan timekeeper.Event) {
	for event := range events {
		event := event
		switch event.Type {
		case timekeeper.EventClocksChanged, timekeeper.EventClockEnded:
			fyne.Do(func() { board.render(event.Clocks) })
		case timekeeper.EventProgress:
			fyne.Do(func() { board.update(event.Clocks) })
		case timekeeper.EventWarning:
			fyne.Do(func() { board.status.SetText(event.Message) })
		case timekeeper.EventAlert:
			log.Info().Str("clock_id", event.ClockID.String()).Str("title", event.Message).Msg("alert shown")
		}
	}
}

// render rebuilds the cards in clock order.
func (board *Window) render(clocks []clockset.Clock) {
	board.clocks = clocks
	seen := make(map[uuid.UUID]bool, len(clocks))
	objects := make([]fyne.CanvasObject, 0, len(clocks))
	for _, clock := range clocks {
		seen[clock.EventID] = true
		c, ok := board.cards[clock.EventID]
		if !ok {
			c = newCard(board, clock.EventID)
			board.cards[clock.EventID] = c
		}
		c.set(clock)
		objects = append(objects, c.root)
	}
	for id := range board.cards {
		if !seen[id] {
			delete(board.cards, id)
		}
	}
	board.grid.Objects = objects
	board.grid.Refresh()
	board.refreshSummary()
}

// update refreshes the countdowns without reordering.
func (board *Window) update(clocks []clockset.Clock) {
	board.clocks = clocks
	for _, clock := range clocks {
		if c, ok := board.cards[clock.EventID]; ok {
			c.set(clock)
		}
	}
	board.refreshSummary()
}

func (board *Window) refreshSummary() {
	running, status := Summary(board.clocks)
	if running > 0 {
		board.toggle.SetText("Stop all")
		board.toggle.SetIcon(theme.MediaStopIcon())
	} else {
		board.toggle.SetText("Start all")
		board.toggle.SetIcon(theme.MediaPlayIcon())
	}
	if board.onStatus != nil {
		board.onStatus(running, status)
	}
}

func (board *Window) handleToggle() {
	running, _ := Summary(board.clocks)
	if running > 0 {
		board.commands.StopAll()
		return
	}
	if board.commands.StartAll(context.Background()) == 0 {
		board.status.SetText("No clock can start right now")
	}
}

func (board *Window) openEditor(def model.EventDefinition) {
	editor.New(board.app, def, func(edited model.EventDefinition) error {
		if edited.ID == uuid.Nil {
			_, err := board.commands.Create(context.Background(), edited)
			return err
		}
		return board.commands.Edit(context.Background(), edited)
	}).Show()
}

func (board *Window) edit(id uuid.UUID) {
	def, err := board.commands.Event(context.Background(), id)
	if err != nil {
		dialog.ShowError(err, board.window)
		return
	}
	board.openEditor(def)
}

func (board *Window) duplicate(id uuid.UUID) {
	if _, err := board.commands.Duplicate(context.Background(), id); err != nil {
		dialog.ShowError(err, board.window)
	}
}

func (board *Window) confirmDelete(id uuid.UUID, name string) {
	dialog.ShowConfirm("Delete clock", "Delete "+name+"?", func(confirmed bool) {
		if !confirmed {
			return
		}
		if err := board.commands.Delete(context.Background(), id); err != nil {
			dialog.ShowError(err, board.window)
		}
	}, board.window)
}
