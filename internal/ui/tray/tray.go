package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowBoard   func()
	OnStartAll    func()
	OnStopAll     func()
	OnPreferences func()
	OnQuit        func()
}

// Icons shown in the tray depending on whether any clock runs.
type Icons struct {
	Idle    fyne.Resource
	Running fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	icons       Icons
	callbacks   Callbacks
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	running     int
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		icons:       icons,
		callbacks:   callbacks,
		statusLabel: "no clock running",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem("Start all", manager.toggle)

	manager.refreshStatus()
	return manager
}

// SetStatus updates the status label and the running count.
func (manager *Manager) SetStatus(running int, status string) {
	manager.running = running
	manager.statusLabel = status
	manager.refreshStatus()
}

func (manager *Manager) toggle() {
	if manager.running > 0 {
		call(manager.callbacks.OnStopAll)
		return
	}
	call(manager.callbacks.OnStartAll)
}

func (manager *Manager) refreshStatus() {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", manager.statusLabel)
	if manager.running > 0 {
		manager.toggleItem.Label = "Stop all"
	} else {
		manager.toggleItem.Label = "Start all"
	}
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Blind Clock",
		manager.statusItem,
		fyne.NewMenuItem("Show clocks", func() { call(manager.callbacks.OnShowBoard) }),
		manager.toggleItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() { call(manager.callbacks.OnPreferences) }),
		fyne.NewMenuItem("Quit", func() { call(manager.callbacks.OnQuit) }),
	))

	icon := manager.icons.Idle
	if manager.running > 0 && manager.icons.Running != nil {
		icon = manager.icons.Running
	}
	if icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
