package board

import (
	"context"
	"sync"
	"sync/atomic"

	"blindclock/internal/notify"
	"blindclock/internal/ui/overlay"

	"fyne.io/fyne/v2"
)

// AlertSink shows alerts as a system notification plus the alert popup.
type AlertSink struct {
	app     fyne.App
	popup   *overlay.Window
	enabled atomic.Bool
}

// NewAlertSink creates a sink. Notifications are allowed when enabled.
func NewAlertSink(app fyne.App, enabled bool) *AlertSink {
	sink := &AlertSink{app: app, popup: overlay.New(app)}
	sink.enabled.Store(enabled)
	return sink
}

// SetEnabled follows the notifications preference.
func (sink *AlertSink) SetEnabled(enabled bool) {
	sink.enabled.Store(enabled)
}

// RequestPermission grants when notifications are enabled in preferences.
func (sink *AlertSink) RequestPermission(context.Context) (notify.Permission, error) {
	if sink.enabled.Load() {
		return notify.PermissionGranted, nil
	}
	return notify.PermissionDenied, nil
}

// Show raises the alert. Dismissing the popup counts as a click.
func (sink *AlertSink) Show(title string, hooks notify.Hooks) (notify.Handle, error) {
	sink.app.SendNotification(fyne.NewNotification("Time to register", title))
	id := sink.popup.Show(title, hooks.OnClick, hooks.OnClose)
	if hooks.OnShow != nil {
		hooks.OnShow()
	}
	return &popupHandle{popup: sink.popup, id: id}, nil
}

type popupHandle struct {
	popup *overlay.Window
	id    int
	once  sync.Once
}

func (handle *popupHandle) Close() {
	handle.once.Do(func() { handle.popup.Close(handle.id) })
}
