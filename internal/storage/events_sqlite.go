package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"blindclock/internal/core/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// SQLiteEventStore keeps events in a SQLite database in WAL mode.
type SQLiteEventStore struct {
	db        *sql.DB
	logger    zerolog.Logger
	listeners listeners
}

// NewSQLiteEventStore opens (or creates) the database and its schema.
func NewSQLiteEventStore(path string, logger zerolog.Logger) (*SQLiteEventStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteEventStore{
		db:     db,
		logger: logger.With().Str("component", "sqlite_store").Logger(),
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (store *SQLiteEventStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id                 TEXT PRIMARY KEY,
		position           INTEGER NOT NULL,
		name               TEXT NOT NULL,
		site               TEXT NOT NULL,
		buy_in             REAL NOT NULL,
		weekdays           TEXT NOT NULL,
		start_time         TEXT NOT NULL,
		initial_stack_size REAL NOT NULL,
		desired_stack_size REAL NOT NULL,
		level              INTEGER NOT NULL,
		blind              REAL NOT NULL,
		blind_duration     REAL NOT NULL,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_position ON events(position);
	`
	_, err := store.db.Exec(schema)
	return err
}

const eventColumns = `id, name, site, buy_in, weekdays, start_time,
	initial_stack_size, desired_stack_size, level, blind, blind_duration`

// List returns all events in creation order.
func (store *SQLiteEventStore) List(ctx context.Context) ([]model.EventDefinition, error) {
	rows, err := store.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.EventDefinition
	for rows.Next() {
		def, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, def)
	}
	return events, rows.Err()
}

// Get returns one event.
func (store *SQLiteEventStore) Get(ctx context.Context, id uuid.UUID) (model.EventDefinition, error) {
	row := store.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id.String())
	def, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EventDefinition{}, ErrNotFound
	}
	return def, err
}

// Create stores def under a new id.
func (store *SQLiteEventStore) Create(ctx context.Context, def model.EventDefinition) (model.EventDefinition, error) {
	created, err := prepareCreate(def)
	if err != nil {
		return model.EventDefinition{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	err = retryOnContention(ctx, func() error {
		_, err := store.db.ExecContext(ctx, `
			INSERT INTO events (id, position, name, site, buy_in, weekdays, start_time,
				initial_stack_size, desired_stack_size, level, blind, blind_duration,
				created_at, updated_at)
			VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM events), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			created.ID.String(), created.Name, created.Site, created.BuyIn,
			formatWeekdays(created.Weekdays), created.StartTime.String(),
			created.InitialStackSize, created.DesiredStackSize, created.Level,
			created.Blind, created.BlindDuration, now, now)
		return err
	})
	if err != nil {
		return model.EventDefinition{}, fmt.Errorf("insert event: %w", err)
	}

	store.logger.Debug().Str("event_id", created.ID.String()).Msg("event created")
	store.listeners.notify()
	return created, nil
}

// Update replaces the stored event with the same id.
func (store *SQLiteEventStore) Update(ctx context.Context, def model.EventDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	var affected int64
	err := retryOnContention(ctx, func() error {
		result, err := store.db.ExecContext(ctx, `
			UPDATE events SET name = ?, site = ?, buy_in = ?, weekdays = ?, start_time = ?,
				initial_stack_size = ?, desired_stack_size = ?, level = ?, blind = ?,
				blind_duration = ?, updated_at = ?
			WHERE id = ?`,
			def.Name, def.Site, def.BuyIn, formatWeekdays(def.Weekdays), def.StartTime.String(),
			def.InitialStackSize, def.DesiredStackSize, def.Level, def.Blind,
			def.BlindDuration, time.Now().UTC().Format(time.RFC3339Nano), def.ID.String())
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	store.listeners.notify()
	return nil
}

// Delete removes the event with id.
func (store *SQLiteEventStore) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := retryOnContention(ctx, func() error {
		result, err := store.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id.String())
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	store.listeners.notify()
	return nil
}

// Subscribe registers fn for change notifications. Only mutations made
// through this store are announced.
func (store *SQLiteEventStore) Subscribe(fn func()) func() {
	return store.listeners.add(fn)
}

// Close closes the database connection.
func (store *SQLiteEventStore) Close() error { return store.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.EventDefinition, error) {
	var (
		def       model.EventDefinition
		id        string
		weekdays  string
		startTime string
	)
	err := row.Scan(&id, &def.Name, &def.Site, &def.BuyIn, &weekdays, &startTime,
		&def.InitialStackSize, &def.DesiredStackSize, &def.Level, &def.Blind, &def.BlindDuration)
	if err != nil {
		return model.EventDefinition{}, err
	}

	if def.ID, err = uuid.Parse(id); err != nil {
		return model.EventDefinition{}, fmt.Errorf("parse event id %q: %w", id, err)
	}
	if def.StartTime, err = model.ParseTimeOfDay(startTime); err != nil {
		return model.EventDefinition{}, err
	}
	if def.Weekdays, err = parseWeekdays(weekdays); err != nil {
		return model.EventDefinition{}, err
	}
	return def, nil
}

func formatWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, strconv.Itoa(int(day)))
	}
	return strings.Join(parts, ",")
}

func parseWeekdays(value string) ([]time.Weekday, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse weekdays %q: %w", value, err)
		}
		days = append(days, time.Weekday(day))
	}
	return days, nil
}
