package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"blindclock/internal/core/model"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type yamlEvent struct {
	ID               string  `yaml:"id"`
	Name             string  `yaml:"name"`
	BuyIn            float64 `yaml:"buy_in"`
	Site             string  `yaml:"site"`
	Weekdays         []int   `yaml:"weekdays,flow"`
	StartTime        string  `yaml:"start_time"`
	InitialStackSize float64 `yaml:"initial_stack_size"`
	DesiredStackSize float64 `yaml:"desired_stack_size"`
	Level            int     `yaml:"level"`
	Blind            float64 `yaml:"blind"`
	BlindDuration    float64 `yaml:"blind_duration"`
}

// YAMLEventStore keeps events in a YAML file and watches it for edits made
// by other processes.
type YAMLEventStore struct {
	path      string
	logger    zerolog.Logger
	listeners listeners
	watcher   *fsnotify.Watcher
	done      chan struct{}

	mu      sync.Mutex
	events  []model.EventDefinition
	content []byte
	closed  bool
}

// NewYAMLEventStore opens path, creating its directory when needed.
func NewYAMLEventStore(path string, logger zerolog.Logger) (*YAMLEventStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	store := &YAMLEventStore{
		path:   path,
		logger: logger.With().Str("component", "yaml_store").Logger(),
		done:   make(chan struct{}),
	}

	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read events file: %w", err)
	}
	events, err := store.decode(content)
	if err != nil {
		return nil, err
	}
	store.events = events
	store.content = content

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch store directory: %w", err)
	}
	store.watcher = watcher
	go store.watch()

	return store, nil
}

// List returns all events in file order.
func (store *YAMLEventStore) List(context.Context) ([]model.EventDefinition, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return cloneEvents(store.events), nil
}

// Get returns one event.
func (store *YAMLEventStore) Get(_ context.Context, id uuid.UUID) (model.EventDefinition, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, def := range store.events {
		if def.ID == id {
			return def.Clone(), nil
		}
	}
	return model.EventDefinition{}, ErrNotFound
}

// Create stores def under a new id.
func (store *YAMLEventStore) Create(_ context.Context, def model.EventDefinition) (model.EventDefinition, error) {
	created, err := prepareCreate(def)
	if err != nil {
		return model.EventDefinition{}, err
	}
	err = store.mutate(func(events []model.EventDefinition) ([]model.EventDefinition, error) {
		return append(events, created), nil
	})
	if err != nil {
		return model.EventDefinition{}, err
	}
	return created.Clone(), nil
}

// Update replaces the stored event with the same id.
func (store *YAMLEventStore) Update(_ context.Context, def model.EventDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	return store.mutate(func(events []model.EventDefinition) ([]model.EventDefinition, error) {
		index := slices.IndexFunc(events, func(e model.EventDefinition) bool { return e.ID == def.ID })
		if index < 0 {
			return nil, ErrNotFound
		}
		events[index] = def.Clone()
		return events, nil
	})
}

// Delete removes the event with id.
func (store *YAMLEventStore) Delete(_ context.Context, id uuid.UUID) error {
	return store.mutate(func(events []model.EventDefinition) ([]model.EventDefinition, error) {
		index := slices.IndexFunc(events, func(e model.EventDefinition) bool { return e.ID == id })
		if index < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(events, index, index+1), nil
	})
}

// Subscribe registers fn for change notifications.
func (store *YAMLEventStore) Subscribe(fn func()) func() {
	return store.listeners.add(fn)
}

// Close stops watching the file.
func (store *YAMLEventStore) Close() error {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return nil
	}
	store.closed = true
	store.mu.Unlock()

	err := store.watcher.Close()
	<-store.done
	return err
}

func (store *YAMLEventStore) mutate(change func([]model.EventDefinition) ([]model.EventDefinition, error)) error {
	store.mu.Lock()
	events, err := change(cloneEvents(store.events))
	if err != nil {
		store.mu.Unlock()
		return err
	}
	content, err := encodeEvents(events)
	if err != nil {
		store.mu.Unlock()
		return err
	}
	if err := writeFileAtomic(store.path, content); err != nil {
		store.mu.Unlock()
		return fmt.Errorf("write events file: %w", err)
	}
	store.events = events
	store.content = content
	store.mu.Unlock()

	store.listeners.notify()
	return nil
}

func (store *YAMLEventStore) watch() {
	defer close(store.done)
	name := filepath.Clean(store.path)
	for {
		select {
		case event, ok := <-store.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				store.reload()
			}
		case err, ok := <-store.watcher.Errors:
			if !ok {
				return
			}
			store.logger.Warn().Err(err).Msg("watch events file")
		}
	}
}

// reload picks up external edits. The file is read under the lock so a
// concurrent mutate cannot be overwritten by stale content. Content equal to
// what this store wrote last is ignored, so every change is announced once.
// An empty or missing file never replaces a non-empty list.
func (store *YAMLEventStore) reload() {
	store.mu.Lock()
	content, err := os.ReadFile(store.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		store.mu.Unlock()
		store.logger.Warn().Err(err).Msg("read events file")
		return
	}
	if store.closed || bytes.Equal(content, store.content) {
		store.mu.Unlock()
		return
	}
	if len(bytes.TrimSpace(content)) == 0 && len(store.events) > 0 {
		// Editors truncate before writing; the write triggers another reload.
		// Removing every event by hand leaves "[]", not an empty file.
		store.mu.Unlock()
		store.logger.Debug().Msg("ignoring empty events file")
		return
	}
	events, err := store.decode(content)
	if err != nil {
		store.mu.Unlock()
		store.logger.Warn().Err(err).Msg("ignoring unreadable events file")
		return
	}
	store.events = events
	store.content = content
	store.mu.Unlock()

	store.logger.Info().Int("events", len(events)).Msg("events file changed")
	store.listeners.notify()
}

// decode parses the file. Entries without a usable id or with invalid
// values are skipped with a warning.
func (store *YAMLEventStore) decode(content []byte) ([]model.EventDefinition, error) {
	var fileData []yamlEvent
	if err := yaml.Unmarshal(content, &fileData); err != nil {
		return nil, fmt.Errorf("parse events yaml: %w", err)
	}

	events := make([]model.EventDefinition, 0, len(fileData))
	for index, entry := range fileData {
		def, err := entry.definition()
		if err != nil {
			store.logger.Warn().Err(err).Int("index", index).Str("name", entry.Name).Msg("skipping stored event")
			continue
		}
		events = append(events, def)
	}
	return events, nil
}

func (entry yamlEvent) definition() (model.EventDefinition, error) {
	id, err := uuid.Parse(entry.ID)
	if err != nil {
		return model.EventDefinition{}, fmt.Errorf("event id: %w", err)
	}
	startTime, err := model.ParseTimeOfDay(entry.StartTime)
	if err != nil {
		return model.EventDefinition{}, err
	}
	weekdays := make([]time.Weekday, 0, len(entry.Weekdays))
	for _, day := range entry.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}

	def := model.EventDefinition{
		ID:               id,
		Name:             entry.Name,
		Site:             entry.Site,
		BuyIn:            entry.BuyIn,
		Weekdays:         weekdays,
		StartTime:        startTime,
		InitialStackSize: entry.InitialStackSize,
		DesiredStackSize: entry.DesiredStackSize,
		Blind:            entry.Blind,
		Level:            entry.Level,
		BlindDuration:    entry.BlindDuration,
	}
	if err := def.Validate(); err != nil {
		return model.EventDefinition{}, err
	}
	return def, nil
}

func encodeEvents(events []model.EventDefinition) ([]byte, error) {
	fileData := make([]yamlEvent, 0, len(events))
	for _, def := range events {
		weekdays := make([]int, 0, len(def.Weekdays))
		for _, day := range def.Weekdays {
			weekdays = append(weekdays, int(day))
		}
		fileData = append(fileData, yamlEvent{
			ID:               def.ID.String(),
			Name:             def.Name,
			BuyIn:            def.BuyIn,
			Site:             def.Site,
			Weekdays:         weekdays,
			StartTime:        def.StartTime.String(),
			InitialStackSize: def.InitialStackSize,
			DesiredStackSize: def.DesiredStackSize,
			Level:            def.Level,
			Blind:            def.Blind,
			BlindDuration:    def.BlindDuration,
		})
	}

	content, err := yaml.Marshal(fileData)
	if err != nil {
		return nil, fmt.Errorf("marshal events yaml: %w", err)
	}
	return content, nil
}

func cloneEvents(events []model.EventDefinition) []model.EventDefinition {
	cloned := make([]model.EventDefinition, 0, len(events))
	for _, def := range events {
		cloned = append(cloned, def.Clone())
	}
	return cloned
}
