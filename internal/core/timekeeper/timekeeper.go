package timekeeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"blindclock/internal/core/clockset"
	"blindclock/internal/core/model"
	"blindclock/internal/notify"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTickInterval is the pulse cadence. The pulse only refreshes the
// presentation, so expiry may be observed up to one interval after the
// alert fired.
const DefaultTickInterval = 200 * time.Millisecond

// Alerter raises the end-of-countdown alert.
type Alerter interface {
	RequestPermission(ctx context.Context) (notify.Permission, error)
	Fire(ctx context.Context, title string) error
}

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
	Clock        clockwork.Clock
	Logger       *zerolog.Logger
}

// Engine drives the countdowns of all running clocks from one shared pulse
// and owns one one-shot alert per running clock.
type Engine struct {
	mu          sync.Mutex
	config      model.TimeKeeperConfig
	options     Config
	clock       clockwork.Clock
	alerter     Alerter
	logger      zerolog.Logger
	definitions []model.EventDefinition
	clocks      []clockset.Clock
	pulseStop   chan struct{}
	events      []chan Event
	closed      bool
}

// New creates an Engine. A nil alerter disables alerts but not countdowns.
func New(config model.TimeKeeperConfig, alerter Alerter, options Config) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	logger := log.Logger
	if options.Logger != nil {
		logger = *options.Logger
	}
	return &Engine{
		config:  config,
		options: options,
		clock:   options.Clock,
		alerter: alerter,
		logger:  logger.With().Str("component", "timekeeper").Logger(),
	}
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	if engine.closed {
		close(ch)
	} else {
		engine.events = append(engine.events, ch)
	}
	engine.mu.Unlock()
	return ch
}

// Load replaces the event definitions and rebuilds every clock.
func (engine *Engine) Load(definitions []model.EventDefinition) {
	copied := make([]model.EventDefinition, 0, len(definitions))
	for _, def := range definitions {
		copied = append(copied, def.Clone())
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.definitions = copied
	engine.rebuildLocked()
}

// Refresh rebuilds the clocks for the current instant.
func (engine *Engine) Refresh() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.rebuildLocked()
}

// UpdateConfig swaps the runtime configuration and rebuilds.
func (engine *Engine) UpdateConfig(config model.TimeKeeperConfig) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.config = config
	engine.rebuildLocked()
}

// Play starts the countdown of one clock. Returns false when the clock does
// not exist, is disabled or already runs.
func (engine *Engine) Play(ctx context.Context, id uuid.UUID) bool {
	engine.requestPermission(ctx)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return false
	}
	index := engine.indexLocked(id)
	if index < 0 || !engine.startLocked(index, engine.clock.Now()) {
		return false
	}
	engine.ensurePulseLocked()
	engine.emitChangedLocked()
	return true
}

// Stop stops the countdown of one clock and cancels its alert. Stopping a
// clock that does not run is a no-op.
func (engine *Engine) Stop(id uuid.UUID) bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	index := engine.indexLocked(id)
	if index < 0 || !engine.stopLocked(index) {
		return false
	}
	engine.stopPulseIfIdleLocked()
	engine.emitChangedLocked()
	return true
}

// StartAll starts every enabled clock. Disabled clocks are skipped.
func (engine *Engine) StartAll(ctx context.Context) int {
	engine.requestPermission(ctx)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return 0
	}
	now := engine.clock.Now()
	started := 0
	for index := range engine.clocks {
		if engine.startLocked(index, now) {
			started++
		}
	}
	if started > 0 {
		engine.ensurePulseLocked()
		engine.emitChangedLocked()
	}
	return started
}

// StopAll stops every enabled clock. Disabled clocks are skipped.
func (engine *Engine) StopAll() int {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	stopped := 0
	for index := range engine.clocks {
		if !engine.clocks[index].Enabled {
			continue
		}
		if engine.stopLocked(index) {
			stopped++
		}
	}
	engine.stopPulseIfIdleLocked()
	if stopped > 0 {
		engine.emitChangedLocked()
	}
	return stopped
}

// Clocks returns a snapshot of the clocks in display order.
func (engine *Engine) Clocks() []clockset.Clock {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.snapshotLocked()
}

// PulseActive reports whether the shared pulse is running.
func (engine *Engine) PulseActive() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.pulseStop != nil
}

// Close cancels every alert, stops the pulse and closes observers.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.closed = true
	for index := range engine.clocks {
		engine.stopLocked(index)
	}
	engine.stopPulseLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (engine *Engine) requestPermission(ctx context.Context) {
	if engine.alerter == nil {
		return
	}
	permission, err := engine.alerter.RequestPermission(ctx)
	if err != nil {
		engine.logger.Warn().Err(err).Msg("notification permission request failed")
		return
	}
	if permission != notify.PermissionGranted {
		engine.logger.Warn().Str("permission", string(permission)).Msg("notifications not granted, countdowns continue")
	}
}

func (engine *Engine) rebuildLocked() {
	if engine.closed {
		return
	}
	now := engine.clock.Now()
	previousTargets := make(map[uuid.UUID]time.Time, len(engine.clocks))
	for _, clock := range engine.clocks {
		if clock.Running {
			previousTargets[clock.EventID] = clock.Target
		}
	}

	clocks, released := clockset.Rebuild(engine.definitions, now, engine.config.StartingWindow, engine.clocks)
	for _, handle := range released {
		handle.Cancel()
	}
	engine.clocks = clocks

	for index := range engine.clocks {
		clock := &engine.clocks[index]
		if !clock.Running || previousTargets[clock.EventID].Equal(clock.Target) {
			continue
		}
		if clock.Alert != nil {
			clock.Alert.Cancel()
		}
		clock.Alert = engine.scheduleAlertLocked(*clock, clock.Target.Sub(now))
		engine.logger.Debug().
			Str("clock_id", clock.EventID.String()).
			Time("target", clock.Target).
			Msg("rescheduled alert for moved target")
	}

	engine.stopPulseIfIdleLocked()
	engine.emitChangedLocked()
}

func (engine *Engine) startLocked(index int, now time.Time) bool {
	clock := &engine.clocks[index]
	if !clock.Enabled || clock.Running || !clock.HasTarget() {
		return false
	}
	duration := clock.Target.Sub(now)
	clock.Running = true
	clock.Ended = false
	clock.StartedAt = now
	clock.Duration = duration
	clock.Remaining = duration
	clock.Alert = engine.scheduleAlertLocked(*clock, duration)

	engine.logger.Info().
		Str("clock_id", clock.EventID.String()).
		Str("name", clock.DisplayName).
		Time("target", clock.Target).
		Dur("duration", duration).
		Msg("clock started")
	return true
}

func (engine *Engine) stopLocked(index int) bool {
	clock := &engine.clocks[index]
	if !clock.Running {
		return false
	}
	if clock.Alert != nil {
		clock.Alert.Cancel()
	}
	clock.Alert = nil
	clock.Running = false
	clock.StartedAt = time.Time{}
	clock.Duration = 0
	clock.Remaining = 0

	engine.logger.Info().Str("clock_id", clock.EventID.String()).Msg("clock stopped")
	return true
}

// pulse advances every running clock against one captured instant.
func (engine *Engine) pulse(now time.Time) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}

	var ended []uuid.UUID
	for index := range engine.clocks {
		clock := &engine.clocks[index]
		if !clock.Running {
			continue
		}
		clock.Remaining = clock.Target.Sub(now)
		if clock.Remaining > 0 {
			continue
		}
		// The one-shot alert is released, not cancelled: it fires on its own.
		clock.Alert = nil
		clock.Running = false
		clock.Ended = true
		clock.Enabled = false
		clock.Target = time.Time{}
		clock.Remaining = 0
		clock.Duration = 0
		ended = append(ended, clock.EventID)
	}

	if len(ended) > 0 {
		clockset.Sort(engine.clocks)
		snapshot := engine.snapshotLocked()
		for _, id := range ended {
			engine.logger.Info().Str("clock_id", id.String()).Msg("clock ended")
			engine.emitLocked(Event{Type: EventClockEnded, ClockID: id, Clocks: snapshot, At: now})
		}
	}
	engine.stopPulseIfIdleLocked()
	engine.emitLocked(Event{Type: EventProgress, Clocks: engine.snapshotLocked(), At: now})
}

func (engine *Engine) ensurePulseLocked() {
	if engine.pulseStop != nil {
		return
	}
	stop := make(chan struct{})
	engine.pulseStop = stop
	ticker := engine.clock.NewTicker(engine.options.TickInterval)
	go engine.runPulse(ticker, stop)
	engine.logger.Debug().Dur("interval", engine.options.TickInterval).Msg("pulse started")
}

func (engine *Engine) runPulse(ticker clockwork.Ticker, stop <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			engine.pulse(engine.clock.Now())
		}
	}
}

func (engine *Engine) stopPulseIfIdleLocked() {
	for _, clock := range engine.clocks {
		if clock.Running {
			return
		}
	}
	engine.stopPulseLocked()
}

func (engine *Engine) stopPulseLocked() {
	if engine.pulseStop == nil {
		return
	}
	close(engine.pulseStop)
	engine.pulseStop = nil
	engine.logger.Debug().Msg("pulse stopped")
}

// alert is the one-shot end-of-countdown timer of a running clock.
type alert struct {
	engine    *Engine
	clockID   uuid.UUID
	title     string
	timer     clockwork.Timer
	cancelled bool
	fired     bool
}

// Cancel must be called with the engine lock held.
func (alert *alert) Cancel() {
	if alert.cancelled {
		return
	}
	alert.cancelled = true
	if alert.timer != nil {
		alert.timer.Stop()
	}
}

func (engine *Engine) scheduleAlertLocked(clock clockset.Clock, delay time.Duration) *alert {
	pending := &alert{engine: engine, clockID: clock.EventID, title: clock.DisplayName}
	pending.timer = engine.clock.AfterFunc(delay, pending.deliver)
	return pending
}

func (alert *alert) deliver() {
	engine := alert.engine
	engine.mu.Lock()
	if alert.cancelled || alert.fired || engine.closed {
		engine.mu.Unlock()
		return
	}
	alert.fired = true
	alerter := engine.alerter
	engine.mu.Unlock()

	now := engine.clock.Now()
	if alerter == nil {
		engine.logger.Warn().Str("clock_id", alert.clockID.String()).Msg("countdown ended without notification sink")
		return
	}
	if err := alerter.Fire(context.Background(), alert.title); err != nil {
		message := "could not show notification: " + err.Error()
		if errors.Is(err, notify.ErrPermissionDenied) {
			message = "enable notifications to be alerted when a clock ends"
		}
		engine.logger.Warn().Err(err).Str("clock_id", alert.clockID.String()).Msg("alert not shown")
		engine.emit(Event{Type: EventWarning, ClockID: alert.clockID, Message: message, At: now})
		return
	}
	engine.emit(Event{Type: EventAlert, ClockID: alert.clockID, Message: alert.title, At: now})
}

func (engine *Engine) indexLocked(id uuid.UUID) int {
	for index, clock := range engine.clocks {
		if clock.EventID == id {
			return index
		}
	}
	return -1
}

func (engine *Engine) snapshotLocked() []clockset.Clock {
	snapshot := make([]clockset.Clock, len(engine.clocks))
	copy(snapshot, engine.clocks)
	for index := range snapshot {
		snapshot[index].Alert = nil
		snapshot[index].Event = snapshot[index].Event.Clone()
	}
	return snapshot
}

func (engine *Engine) emitChangedLocked() {
	engine.emitLocked(Event{
		Type:   EventClocksChanged,
		Clocks: engine.snapshotLocked(),
		At:     engine.clock.Now(),
	})
}

func (engine *Engine) emit(event Event) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.emitLocked(event)
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}
