package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreboard "blindclock/internal/core/board"
	"blindclock/internal/core/timekeeper"
	"blindclock/internal/notify"
	"blindclock/internal/platform"
	"blindclock/internal/storage"
	"blindclock/internal/ui/board"
	"blindclock/internal/ui/preferences"
	"blindclock/internal/ui/tray"
	"blindclock/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	appName = "BlindClock"
	appID   = "com.blindclock.app"
)

type options struct {
	headless  bool
	list      bool
	exportICS string
	minimized bool
}

func main() {
	opts := parseFlags()

	if err := storage.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Warn().Err(err).Msg("settings unreadable, using defaults")
	}
	if err := storage.ApplyEnv(&settings); err != nil {
		log.Warn().Err(err).Msg("environment overrides ignored")
	}
	setLogLevel(settings.LogLevel)

	store, err := storage.OpenEventStore(appName, settings, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("open event store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("close event store")
		}
	}()

	switch {
	case opts.list:
		if err := listClocks(context.Background(), os.Stdout, store, settings, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("list clocks")
		}
		return
	case opts.exportICS != "":
		if err := exportCalendar(context.Background(), opts.exportICS, store, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("export calendar")
		}
		return
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if activateErr := platform.ActivateRunning(appName); activateErr != nil {
			log.Warn().Err(activateErr).Msg("could not reach running instance")
		}
		log.Info().Msg("already running")
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	if opts.headless {
		runHeadless(store, settings)
		return
	}
	runDesktop(guard, store, settings, opts)
}

func parseFlags() options {
	var opts options
	flag.BoolVar(&opts.headless, "headless", false, "run every current clock without a window and log alerts")
	flag.BoolVar(&opts.list, "list", false, "print the current clocks and exit")
	flag.StringVar(&opts.exportICS, "export-ics", "", "write the tournament schedule as an iCalendar file")
	flag.BoolVar(&opts.minimized, "minimized", false, "start in the system tray")
	flag.Parse()
	return opts
}

func setLogLevel(value string) {
	level, err := zerolog.ParseLevel(value)
	if err != nil || value == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func newSound() notify.Sound {
	return platform.NewAlarm()
}

func runHeadless(store storage.EventStore, settings preferences.Settings) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	alerter := notify.NewAlerter(notify.NewLogSink(log.Logger), notify.AlerterConfig{
		AutoDismiss: settings.AlertTimeout,
	})
	engine := timekeeper.New(settings.TimeKeeperConfig(), alerter, timekeeper.Config{
		TickInterval: settings.TickInterval,
	})
	defer engine.Close()
	events := engine.Subscribe(16)

	controller := coreboard.New(store, engine, coreboard.Options{RefreshCron: settings.RefreshCron})
	if err := controller.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start board")
	}
	defer controller.Close()

	started := controller.StartAll(ctx)
	if started == 0 {
		log.Info().Msg("no clock can start right now")
		return
	}

	// Each started clock raises one alert or one warning before it is done.
	for pending := started; pending > 0; {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case timekeeper.EventAlert:
				pending--
			case timekeeper.EventWarning:
				log.Warn().Str("clock_id", event.ClockID.String()).Msg(event.Message)
				pending--
			}
		}
	}
	log.Info().Int("clocks", started).Msg("all clocks ended")
}

func runDesktop(guard *platform.InstanceGuard, store storage.EventStore, settings preferences.Settings, opts options) {
	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.AppIcon))

	sink := board.NewAlertSink(fyneApp, settings.Notifications)
	alerter := notify.NewAlerter(sink, notify.AlerterConfig{
		NewSound:    newSound,
		AutoDismiss: settings.AlertTimeout,
	})
	engine := timekeeper.New(settings.TimeKeeperConfig(), alerter, timekeeper.Config{
		TickInterval: settings.TickInterval,
	})
	events := engine.Subscribe(16)

	ctx, cancel := context.WithCancel(context.Background())
	controller := coreboard.New(store, engine, coreboard.Options{RefreshCron: settings.RefreshCron})

	var trayManager *tray.Manager
	boardWindow := board.New(fyneApp, controller, func(running int, status string) {
		if trayManager != nil {
			trayManager.SetStatus(running, status)
		}
	})
	go boardWindow.Follow(events)

	if err := controller.Start(ctx); err != nil {
		log.Error().Err(err).Msg("start board")
	}

	item := loginItem()
	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if err := storage.SaveSettings(appName, updated); err != nil {
			log.Error().Err(err).Msg("save settings")
		}
		if updated.StoreDriver != settings.StoreDriver || updated.StorePath != settings.StorePath ||
			updated.RefreshCron != settings.RefreshCron || updated.TickInterval != settings.TickInterval {
			log.Info().Msg("store, refresh and tick changes apply after restart")
		}
		if updated.LaunchAtLogin != settings.LaunchAtLogin {
			if err := platform.SetLaunchAtLogin(item, updated.LaunchAtLogin); err != nil {
				log.Warn().Err(err).Msg("launch at login")
			}
		}
		setLogLevel(updated.LogLevel)
		sink.SetEnabled(updated.Notifications)
		engine.UpdateConfig(updated.TimeKeeperConfig())
		settings = updated
	})

	guard.Serve(func() {
		fyne.Do(boardWindow.Show)
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Icons{
			Idle:    resources.MustIcon(resources.TrayIdleIcon),
			Running: resources.MustIcon(resources.TrayRunningIcon),
		}, tray.Callbacks{
			OnShowBoard:   boardWindow.Show,
			OnStartAll:    func() { controller.StartAll(ctx) },
			OnStopAll:     func() { controller.StopAll() },
			OnPreferences: prefsWindow.Show,
			OnQuit:        fyneApp.Quit,
		})
	} else {
		log.Info().Msg("system tray unsupported on this platform")
		opts.minimized = false
	}

	fyneApp.Lifecycle().SetOnStopped(func() {
		cancel()
		controller.Close()
		engine.Close()
	})

	if !opts.minimized {
		boardWindow.Show()
	}
	fyneApp.Run()
}

func loginItem() platform.LoginItem {
	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}
	return platform.LoginItem{Name: appName, Exec: executable, Args: []string{"-minimized"}}
}
