package overlay

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strings"
	"sync"
	"time"

	"blindclock/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var (
	calmColor      = color.NRGBA{R: 31, G: 111, B: 67, A: 235}
	highlightColor = color.NRGBA{R: 232, G: 190, B: 66, A: 245}
	textColor      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	overlayWidthFraction  = float32(0.22)
	overlayHeightFraction = float32(0.20)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// entry is one alert waiting for the user.
type entry struct {
	id        int
	title     string
	shownAt   time.Time
	onDismiss func()
	onClose   func()
}

// Window is the always-on-top popup listing clocks that just ended.
type Window struct {
	window     fyne.Window
	background *canvas.Rectangle
	titleLabel *canvas.Text
	listLabel  *widget.Label
	sinceLabel *canvas.Text
	engine     *animation.Engine

	mu      sync.Mutex
	nextID  int
	entries []entry
	cancel  context.CancelFunc
}

// New creates the popup. It stays hidden until Show.
func New(app fyne.App) *Window {
	window := app.NewWindow("Time to register")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(calmColor)

	titleLabel := canvas.NewText("Time to register", textColor)
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 21

	listLabel := widget.NewLabel("")
	listLabel.Wrapping = fyne.TextWrapWord

	sinceLabel := canvas.NewText("", textColor)
	sinceLabel.TextSize = 13

	popup := &Window{
		window:     window,
		background: background,
		titleLabel: titleLabel,
		listLabel:  listLabel,
		sinceLabel: sinceLabel,
	}
	popup.engine = animation.New(animation.DefaultConfig(), nil, popup.setHighlight)

	dismiss := widget.NewButton("Dismiss", popup.dismissAll)
	content := container.NewBorder(
		container.NewVBox(titleLabel, sinceLabel),
		container.NewHBox(dismiss),
		nil, nil,
		listLabel,
	)
	window.SetContent(container.NewStack(background, container.NewPadded(content)))
	window.SetCloseIntercept(popup.closeAll)
	return popup
}

// Show adds an alert and brings the popup up. The returned id is passed to
// Close. onDismiss runs when the user dismisses, onClose when the alert goes
// away any other way.
func (popup *Window) Show(title string, onDismiss, onClose func()) int {
	popup.mu.Lock()
	popup.nextID++
	id := popup.nextID
	popup.entries = append(popup.entries, entry{
		id:        id,
		title:     title,
		shownAt:   time.Now(),
		onDismiss: onDismiss,
		onClose:   onClose,
	})
	text, since := popup.describeLocked()
	if popup.cancel != nil {
		popup.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	popup.cancel = cancel
	popup.engine.StartFlash(ctx)
	popup.mu.Unlock()

	fyne.Do(func() {
		popup.listLabel.SetText(text)
		popup.sinceLabel.Text = since
		popup.sinceLabel.Refresh()
		popup.resizeToScreenFraction()
		popup.window.Show()
		popup.window.RequestFocus()
	})
	return id
}

// Close removes one alert without running its dismiss hook.
func (popup *Window) Close(id int) {
	popup.mu.Lock()
	index := slices.IndexFunc(popup.entries, func(e entry) bool { return e.id == id })
	if index < 0 {
		popup.mu.Unlock()
		return
	}
	closed := popup.entries[index]
	popup.entries = slices.Delete(popup.entries, index, index+1)
	remaining := len(popup.entries)
	text, since := popup.describeLocked()
	popup.mu.Unlock()

	if closed.onClose != nil {
		closed.onClose()
	}
	if remaining == 0 {
		popup.hide()
		return
	}
	fyne.Do(func() {
		popup.listLabel.SetText(text)
		popup.sinceLabel.Text = since
		popup.sinceLabel.Refresh()
	})
}

func (popup *Window) dismissAll() {
	for _, e := range popup.drain() {
		if e.onDismiss != nil {
			e.onDismiss()
		}
	}
	popup.hide()
}

func (popup *Window) closeAll() {
	for _, e := range popup.drain() {
		if e.onClose != nil {
			e.onClose()
		}
	}
	popup.hide()
}

func (popup *Window) drain() []entry {
	popup.mu.Lock()
	defer popup.mu.Unlock()
	entries := popup.entries
	popup.entries = nil
	return entries
}

func (popup *Window) hide() {
	popup.mu.Lock()
	cancel := popup.cancel
	popup.cancel = nil
	popup.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	fyne.Do(popup.window.Hide)
}

func (popup *Window) describeLocked() (string, string) {
	titles := make([]string, 0, len(popup.entries))
	for _, e := range popup.entries {
		titles = append(titles, e.title)
	}
	since := ""
	if len(popup.entries) > 0 {
		since = "since " + popup.entries[0].shownAt.Format("15:04")
	}
	if len(titles) > 1 {
		since = fmt.Sprintf("%d clocks ended, %s", len(titles), since)
	}
	return strings.Join(titles, "\n"), since
}

func (popup *Window) setHighlight(highlighted bool) {
	fill := calmColor
	if highlighted {
		fill = highlightColor
	}
	fyne.Do(func() {
		popup.background.FillColor = fill
		canvas.Refresh(popup.background)
	})
}

func (popup *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := popup.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := popup.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	popup.window.Resize(fyne.NewSize(width, height))
	popup.window.CenterOnScreen()
}
