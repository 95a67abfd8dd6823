package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"blindclock/internal/core/model"
	"blindclock/internal/ui/preferences"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned for unknown event ids.
var ErrNotFound = errors.New("event not found")

const (
	eventsYAMLFileName   = "events.yaml"
	eventsSQLiteFileName = "events.db"
)

// EventStore persists event definitions.
type EventStore interface {
	List(ctx context.Context) ([]model.EventDefinition, error)
	Get(ctx context.Context, id uuid.UUID) (model.EventDefinition, error)
	// Create validates def, assigns a fresh id and stores it.
	Create(ctx context.Context, def model.EventDefinition) (model.EventDefinition, error)
	Update(ctx context.Context, def model.EventDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Subscribe registers fn to run once per change of the stored list.
	Subscribe(fn func()) (cancel func())
	Close() error
}

// OpenEventStore opens the backend selected in settings. An empty
// StorePath resolves to the user config directory of appName.
func OpenEventStore(appName string, settings preferences.Settings, logger zerolog.Logger) (EventStore, error) {
	path := settings.StorePath
	if path == "" {
		dir, err := ConfigDir(appName)
		if err != nil {
			return nil, err
		}
		fileName := eventsYAMLFileName
		if settings.StoreDriver == preferences.StoreDriverSQLite {
			fileName = eventsSQLiteFileName
		}
		path = filepath.Join(dir, fileName)
	}

	switch settings.StoreDriver {
	case preferences.StoreDriverSQLite:
		store, err := NewSQLiteEventStore(path, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite event store: %w", err)
		}
		return store, nil
	case preferences.StoreDriverYAML, "":
		store, err := NewYAMLEventStore(path, logger)
		if err != nil {
			return nil, fmt.Errorf("open yaml event store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", settings.StoreDriver)
	}
}

// listeners fans change notifications out to subscribers.
type listeners struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func()
}

func (l *listeners) add(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) notify() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func prepareCreate(def model.EventDefinition) (model.EventDefinition, error) {
	def = def.Clone()
	def.ID = uuid.New()
	if err := def.Validate(); err != nil {
		return model.EventDefinition{}, err
	}
	return def, nil
}
