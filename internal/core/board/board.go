// Package board keeps the clocks in sync with the stored events and routes
// user commands to the event store and the engine.
package board

import (
	"context"
	"fmt"
	"sync"

	"blindclock/internal/core/model"
	"blindclock/internal/storage"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultRefreshCron rebuilds the clocks every minute.
const DefaultRefreshCron = "* * * * *"

// Engine is the part of the tick engine the board drives.
type Engine interface {
	Load(definitions []model.EventDefinition)
	Refresh()
	Play(ctx context.Context, id uuid.UUID) bool
	Stop(id uuid.UUID) bool
	StartAll(ctx context.Context) int
	StopAll() int
}

// Options configures a Controller.
type Options struct {
	RefreshCron string
	Logger      *zerolog.Logger
}

// Controller binds an EventStore to an Engine.
type Controller struct {
	store  storage.EventStore
	engine Engine
	logger zerolog.Logger
	spec   string

	mu          sync.Mutex
	scheduler   *cron.Cron
	unsubscribe func()
}

// New creates a Controller. Nothing runs until Start.
func New(store storage.EventStore, engine Engine, options Options) *Controller {
	logger := log.Logger
	if options.Logger != nil {
		logger = *options.Logger
	}
	spec := options.RefreshCron
	if spec == "" {
		spec = DefaultRefreshCron
	}
	return &Controller{
		store:  store,
		engine: engine,
		logger: logger.With().Str("component", "board").Logger(),
		spec:   spec,
	}
}

// Start loads the stored events into the engine, follows store changes and
// schedules the periodic rebuild.
func (controller *Controller) Start(ctx context.Context) error {
	scheduler := cron.New(cron.WithLogger(cronLogger{logger: controller.logger}))
	if _, err := scheduler.AddFunc(controller.spec, controller.engine.Refresh); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", controller.spec, err)
	}
	if err := controller.Reload(ctx); err != nil {
		return err
	}

	unsubscribe := controller.store.Subscribe(func() {
		if err := controller.Reload(context.Background()); err != nil {
			controller.logger.Error().Err(err).Msg("reload events")
		}
	})

	controller.mu.Lock()
	controller.scheduler = scheduler
	controller.unsubscribe = unsubscribe
	controller.mu.Unlock()

	scheduler.Start()
	controller.logger.Info().Str("refresh_cron", controller.spec).Msg("board started")
	return nil
}

// Reload lists the stored events and rebuilds the clocks.
func (controller *Controller) Reload(ctx context.Context) error {
	events, err := controller.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	controller.engine.Load(events)
	controller.logger.Debug().Int("events", len(events)).Msg("events loaded")
	return nil
}

// Play starts one clock.
func (controller *Controller) Play(ctx context.Context, id uuid.UUID) bool {
	return controller.engine.Play(ctx, id)
}

// Stop stops one clock.
func (controller *Controller) Stop(id uuid.UUID) bool {
	return controller.engine.Stop(id)
}

// StartAll starts every enabled clock.
func (controller *Controller) StartAll(ctx context.Context) int {
	return controller.engine.StartAll(ctx)
}

// StopAll stops every running clock.
func (controller *Controller) StopAll() int {
	return controller.engine.StopAll()
}

// Create stores a new event.
func (controller *Controller) Create(ctx context.Context, def model.EventDefinition) (model.EventDefinition, error) {
	created, err := controller.store.Create(ctx, def)
	if err != nil {
		return model.EventDefinition{}, fmt.Errorf("create event: %w", err)
	}
	controller.logger.Info().Str("event_id", created.ID.String()).Str("name", created.Name).Msg("event created")
	return created, nil
}

// Edit replaces a stored event.
func (controller *Controller) Edit(ctx context.Context, def model.EventDefinition) error {
	if err := controller.store.Update(ctx, def); err != nil {
		return fmt.Errorf("update event %s: %w", def.ID, err)
	}
	controller.logger.Info().Str("event_id", def.ID.String()).Msg("event updated")
	return nil
}

// Delete removes a stored event. Its clock disappears with the next rebuild.
func (controller *Controller) Delete(ctx context.Context, id uuid.UUID) error {
	if err := controller.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	controller.logger.Info().Str("event_id", id.String()).Msg("event deleted")
	return nil
}

// Duplicate stores a copy of an event under a new id.
func (controller *Controller) Duplicate(ctx context.Context, id uuid.UUID) (model.EventDefinition, error) {
	def, err := controller.store.Get(ctx, id)
	if err != nil {
		return model.EventDefinition{}, fmt.Errorf("duplicate event %s: %w", id, err)
	}
	def.ID = uuid.Nil
	return controller.Create(ctx, def)
}

// Event returns one stored event for editing.
func (controller *Controller) Event(ctx context.Context, id uuid.UUID) (model.EventDefinition, error) {
	return controller.store.Get(ctx, id)
}

// Close stops following the store and the periodic rebuild.
func (controller *Controller) Close() {
	controller.mu.Lock()
	scheduler := controller.scheduler
	unsubscribe := controller.unsubscribe
	controller.scheduler = nil
	controller.unsubscribe = nil
	controller.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}

// cronLogger routes cron's logging through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
