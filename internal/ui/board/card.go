package board

import (
	"context"

	"blindclock/internal/core/clockset"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
)

// card is the view of one clock.
type card struct {
	id        uuid.UUID
	board     *Window
	root      fyne.CanvasObject
	title     *widget.Label
	target    *widget.Label
	remaining *widget.Label
	progress  *widget.ProgressBar
	play      *widget.Button
	running   bool
	name      string
}

func newCard(board *Window, id uuid.UUID) *card {
	c := &card{
		id:        id,
		board:     board,
		title:     widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		target:    widget.NewLabel(""),
		remaining: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true}),
		progress:  widget.NewProgressBar(),
	}
	c.title.Truncation = fyne.TextTruncateEllipsis
	c.progress.TextFormatter = func() string { return "" }
	c.play = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), c.togglePlay)

	actions := container.NewHBox(
		c.play,
		layout.NewSpacer(),
		widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() { board.edit(id) }),
		widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() { board.duplicate(id) }),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { board.confirmDelete(id, c.name) }),
	)
	c.root = widget.NewCard("", "", container.NewVBox(c.title, c.target, c.progress, c.remaining, actions))
	return c
}

func (c *card) set(clock clockset.Clock) {
	c.running = clock.Running
	c.name = clock.DisplayName
	c.title.SetText(clock.DisplayName)
	c.target.SetText("Register by " + formatTarget(clock))
	c.progress.SetValue(clock.Progress())
	if clock.Running {
		c.remaining.SetText(formatRemaining(clock.Remaining))
		c.play.SetIcon(theme.MediaStopIcon())
	} else {
		c.remaining.SetText("")
		c.play.SetIcon(theme.MediaPlayIcon())
	}
	if clock.Enabled || clock.Running {
		c.play.Enable()
	} else {
		c.play.Disable()
	}
}

func (c *card) togglePlay() {
	if c.running {
		c.board.commands.Stop(c.id)
		return
	}
	c.board.commands.Play(context.Background(), c.id)
}
