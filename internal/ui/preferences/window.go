package preferences

import (
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/robfig/cron/v3"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings)
	onCancel      func()
	status        *widget.Label
	windowHours   *widget.Entry
	tickMillis    *widget.Entry
	alertSeconds  *widget.Entry
	notifications *widget.Check
	refreshCron   *widget.Entry
	storeDriver   *widget.Select
	storePath     *widget.Entry
	logLevel      *widget.Select
	launchAtLogin *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Blind Clock Settings")

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		status:        widget.NewLabel(""),
		windowHours:   widget.NewEntry(),
		tickMillis:    widget.NewEntry(),
		alertSeconds:  widget.NewEntry(),
		notifications: widget.NewCheck("Show notifications", nil),
		refreshCron:   widget.NewEntry(),
		storeDriver:   widget.NewSelect([]string{StoreDriverYAML, StoreDriverSQLite}, nil),
		storePath:     widget.NewEntry(),
		logLevel:      widget.NewSelect(logLevels, nil),
		launchAtLogin: widget.NewCheck("Start at login", nil),
	}
	prefs.storePath.SetPlaceHolder("default location")
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Clocks", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Starting window"), prefs.windowHours, widget.NewLabel("hours")),
		container.NewHBox(widget.NewLabel("Refresh every"), prefs.tickMillis, widget.NewLabel("ms")),
		container.NewHBox(widget.NewLabel("Rebuild schedule (cron)"), prefs.refreshCron),
		widget.NewLabelWithStyle("Alerts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.notifications,
		container.NewHBox(widget.NewLabel("Dismiss alert after"), prefs.alertSeconds, widget.NewLabel("sec")),
		widget.NewLabelWithStyle("Storage", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Backend"), prefs.storeDriver),
		container.NewHBox(widget.NewLabel("Path"), prefs.storePath),
		container.NewHBox(widget.NewLabel("Log level"), prefs.logLevel),
		prefs.launchAtLogin,
		prefs.status,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(440, 460))
	window.SetCloseIntercept(window.Hide)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.windowHours.SetText(strconv.FormatFloat(settings.StartingWindow.Hours(), 'f', -1, 64))
	prefs.tickMillis.SetText(strconv.FormatInt(settings.TickInterval.Milliseconds(), 10))
	prefs.alertSeconds.SetText(strconv.Itoa(int(settings.AlertTimeout.Seconds())))
	prefs.notifications.SetChecked(settings.Notifications)
	prefs.refreshCron.SetText(settings.RefreshCron)
	prefs.storeDriver.SetSelected(settings.StoreDriver)
	prefs.storePath.SetText(settings.StorePath)
	prefs.logLevel.SetSelected(settings.LogLevel)
	prefs.launchAtLogin.SetChecked(settings.LaunchAtLogin)
	prefs.status.SetText("")
}

func (prefs *Window) handleSave() {
	settings, problem := applyForm(prefs.settings, formValues{
		StartingWindowHours: prefs.windowHours.Text,
		TickMillis:          prefs.tickMillis.Text,
		AlertSeconds:        prefs.alertSeconds.Text,
		Notifications:       prefs.notifications.Checked,
		RefreshCron:         prefs.refreshCron.Text,
		StoreDriver:         prefs.storeDriver.Selected,
		StorePath:           prefs.storePath.Text,
		LogLevel:            prefs.logLevel.Selected,
		LaunchAtLogin:       prefs.launchAtLogin.Checked,
	})
	if problem != "" {
		prefs.status.SetText(problem)
		return
	}

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

type formValues struct {
	StartingWindowHours string
	TickMillis          string
	AlertSeconds        string
	Notifications       bool
	RefreshCron         string
	StoreDriver         string
	StorePath           string
	LogLevel            string
	LaunchAtLogin       bool
}

// applyForm merges form values into base. Unparseable numbers keep the
// previous value; an invalid cron spec is reported and nothing is applied.
func applyForm(base Settings, values formValues) (Settings, string) {
	settings := base

	if hours, ok := parsePositiveFloat(values.StartingWindowHours); ok {
		settings.StartingWindow = time.Duration(hours * float64(time.Hour))
	}
	if millis, ok := parsePositiveInt(values.TickMillis); ok {
		settings.TickInterval = time.Duration(millis) * time.Millisecond
	}
	if seconds, ok := parsePositiveInt(values.AlertSeconds); ok {
		settings.AlertTimeout = time.Duration(seconds) * time.Second
	}
	settings.Notifications = values.Notifications

	if values.RefreshCron != "" {
		if _, err := cron.ParseStandard(values.RefreshCron); err != nil {
			return base, "Invalid cron spec: " + err.Error()
		}
		settings.RefreshCron = values.RefreshCron
	}
	if values.StoreDriver == StoreDriverYAML || values.StoreDriver == StoreDriverSQLite {
		settings.StoreDriver = values.StoreDriver
	}
	settings.StorePath = values.StorePath
	if values.LogLevel != "" {
		settings.LogLevel = values.LogLevel
	}
	settings.LaunchAtLogin = values.LaunchAtLogin
	return settings, ""
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func parsePositiveFloat(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
