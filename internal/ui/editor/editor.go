// Package editor is the create/edit form for tournament definitions.
package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blindclock/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
)

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Window edits one event definition.
type Window struct {
	window   fyne.Window
	id       uuid.UUID
	onSave   func(model.EventDefinition) error
	status   *widget.Label
	syncing  bool
	name     *widget.Entry
	buyIn    *widget.Entry
	site     *widget.Entry
	weekdays *widget.CheckGroup
	start    *widget.Entry
	initial  *widget.Entry
	desired  *widget.Entry
	level    *widget.Entry
	blind    *widget.Entry
	duration *widget.Entry
}

// New opens the editor for def. A zero ID means a new event. onSave
// returning an error keeps the window open with the message shown.
func New(app fyne.App, def model.EventDefinition, onSave func(model.EventDefinition) error) *Window {
	title := "New Tournament Clock"
	if def.ID != uuid.Nil {
		title = "Edit Tournament Clock"
	}

	editor := &Window{
		window:   app.NewWindow(title),
		id:       def.ID,
		onSave:   onSave,
		status:   widget.NewLabel(""),
		name:     widget.NewEntry(),
		buyIn:    widget.NewEntry(),
		site:     widget.NewEntry(),
		weekdays: widget.NewCheckGroup(weekdayLabels, nil),
		start:    widget.NewEntry(),
		initial:  widget.NewEntry(),
		desired:  widget.NewEntry(),
		level:    widget.NewEntry(),
		blind:    widget.NewEntry(),
		duration: widget.NewEntry(),
	}
	editor.weekdays.Horizontal = true
	editor.start.SetPlaceHolder("HH:MM")
	editor.fill(def)

	editor.desired.OnChanged = func(string) { editor.syncFrom(editor.desired) }
	editor.blind.OnChanged = func(string) { editor.syncFrom(editor.blind) }
	editor.initial.OnChanged = func(string) { editor.syncFrom(editor.desired) }

	form := widget.NewForm(
		widget.NewFormItem("Name", editor.name),
		widget.NewFormItem("Buy-in", editor.buyIn),
		widget.NewFormItem("Site", editor.site),
		widget.NewFormItem("Weekdays", editor.weekdays),
		widget.NewFormItem("Start time", editor.start),
		widget.NewFormItem("Initial stack (chips)", editor.initial),
		widget.NewFormItem("Desired stack (BB)", editor.desired),
		widget.NewFormItem("Blind", editor.blind),
		widget.NewFormItem("Level", editor.level),
		widget.NewFormItem("Level duration (min)", editor.duration),
	)

	saveButton := widget.NewButton("Save", editor.handleSave)
	saveButton.Importance = widget.HighImportance
	closeButton := widget.NewButton("Close", editor.window.Close)
	buttons := container.NewHBox(editor.status, layout.NewSpacer(), closeButton, saveButton)

	editor.window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	editor.window.Resize(fyne.NewSize(560, 480))
	return editor
}

// Show displays the editor.
func (editor *Window) Show() {
	editor.window.Show()
	editor.window.RequestFocus()
}

func (editor *Window) fill(def model.EventDefinition) {
	editor.syncing = true
	defer func() { editor.syncing = false }()

	editor.name.SetText(def.Name)
	editor.site.SetText(def.Site)
	editor.buyIn.SetText(formatNumber(def.BuyIn))
	var selected []string
	for _, day := range def.Weekdays {
		if day >= time.Sunday && day <= time.Saturday {
			selected = append(selected, weekdayLabels[day])
		}
	}
	editor.weekdays.SetSelected(selected)
	if def.ID != uuid.Nil || def.StartTime != (model.TimeOfDay{}) {
		editor.start.SetText(def.StartTime.String())
	}
	editor.initial.SetText(formatNumber(def.InitialStackSize))
	editor.desired.SetText(formatNumber(def.DesiredStackSize))
	editor.blind.SetText(formatNumber(def.Blind))
	if def.Level > 0 {
		editor.level.SetText(strconv.Itoa(def.Level))
	}
	editor.duration.SetText(formatNumber(def.BlindDuration))
}

// syncFrom applies the two-way blind rule after source changed.
func (editor *Window) syncFrom(source *widget.Entry) {
	if editor.syncing {
		return
	}
	editor.syncing = true
	defer func() { editor.syncing = false }()

	if source == editor.blind {
		if value, ok := syncedValue(editor.initial.Text, editor.blind.Text); ok {
			editor.desired.SetText(value)
		}
		return
	}
	if value, ok := syncedValue(editor.initial.Text, editor.desired.Text); ok {
		editor.blind.SetText(value)
	}
}

func (editor *Window) handleSave() {
	def, err := parseForm(formValues{
		Name:             editor.name.Text,
		BuyIn:            editor.buyIn.Text,
		Site:             editor.site.Text,
		Weekdays:         editor.weekdays.Selected,
		StartTime:        editor.start.Text,
		InitialStackSize: editor.initial.Text,
		DesiredStackSize: editor.desired.Text,
		Blind:            editor.blind.Text,
		Level:            editor.level.Text,
		BlindDuration:    editor.duration.Text,
	})
	if err != nil {
		editor.status.SetText(firstLine(err))
		return
	}
	def.ID = editor.id
	if editor.onSave != nil {
		if err := editor.onSave(def); err != nil {
			editor.status.SetText(firstLine(err))
			return
		}
	}
	editor.window.Close()
}

type formValues struct {
	Name             string
	BuyIn            string
	Site             string
	Weekdays         []string
	StartTime        string
	InitialStackSize string
	DesiredStackSize string
	Blind            string
	Level            string
	BlindDuration    string
}

// parseForm turns the form text into a validated definition. Every field
// problem is reported.
func parseForm(values formValues) (model.EventDefinition, error) {
	var errs []error
	number := func(label, text string) float64 {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a number", label))
		}
		return value
	}

	def := model.EventDefinition{
		Name:             strings.TrimSpace(values.Name),
		Site:             strings.TrimSpace(values.Site),
		BuyIn:            number("buy-in", values.BuyIn),
		InitialStackSize: number("initial stack", values.InitialStackSize),
		DesiredStackSize: number("desired stack", values.DesiredStackSize),
		Blind:            number("blind", values.Blind),
		BlindDuration:    number("level duration", values.BlindDuration),
	}
	if def.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if def.Site == "" {
		errs = append(errs, errors.New("site is required"))
	}

	level, err := strconv.Atoi(strings.TrimSpace(values.Level))
	if err != nil {
		errs = append(errs, errors.New("level must be a whole number"))
	}
	def.Level = level

	startTime, err := model.ParseTimeOfDay(strings.TrimSpace(values.StartTime))
	if err != nil {
		errs = append(errs, err)
	}
	def.StartTime = startTime

	for _, label := range values.Weekdays {
		for index, candidate := range weekdayLabels {
			if candidate == label {
				def.Weekdays = append(def.Weekdays, time.Weekday(index))
			}
		}
	}

	if len(errs) > 0 {
		return model.EventDefinition{}, errors.Join(errs...)
	}
	if err := def.Validate(); err != nil {
		return model.EventDefinition{}, err
	}
	return def, nil
}

// syncedValue returns initial/value formatted, the counterpart of a changed
// desired stack or blind.
func syncedValue(initialText, valueText string) (string, bool) {
	initial, err := strconv.ParseFloat(strings.TrimSpace(initialText), 64)
	if err != nil || initial <= 0 {
		return "", false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueText), 64)
	if err != nil || value <= 0 {
		return "", false
	}
	synced := model.EventDefinition{InitialStackSize: initial}.WithBlind(value)
	return formatNumber(synced.DesiredStackSize), true
}

func formatNumber(value float64) string {
	if value == 0 {
		return ""
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func firstLine(err error) string {
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
