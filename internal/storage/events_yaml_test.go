package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLEventStoreWritesReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	store, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	created, err := store.Create(context.Background(), sampleEvent("Hot $5.50"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "id: "+created.ID.String())
	assert.Contains(t, text, "19:30")
	assert.Contains(t, text, "weekdays: [2, 4]")
	assert.Contains(t, text, "blind_duration: 7.5")
}

func TestYAMLEventStoreReloadsOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	store, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	created, err := store.Create(context.Background(), sampleEvent("kept"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	events, err := reopened.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created, events[0])
}

func TestYAMLEventStoreSkipsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	content := `
- id: 8a0e3f3c-3f0d-4a51-9c1f-2a4b2b7a8d10
  name: good
  site: site
  buy_in: 1
  weekdays: [1]
  start_time: "20:00"
  initial_stack_size: 1500
  desired_stack_size: 15
  level: 3
  blind: 100
  blind_duration: 10
- id: not-a-uuid
  name: broken
  weekdays: [1]
  start_time: "20:00"
- id: 5f2b7c61-5d8a-4bb5-8f5c-1b9a9c7e4e21
  name: no days
  weekdays: []
  start_time: "20:00"
  initial_stack_size: 1500
  desired_stack_size: 15
  level: 3
  blind_duration: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	events, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "good", events[0].Name)
	assert.Equal(t, time.Monday, events[0].Weekdays[0])
}

func TestYAMLEventStoreNotifiesOnExternalEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.yaml")
	store, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var calls atomic.Int32
	store.Subscribe(func() { calls.Add(1) })

	other, err := NewYAMLEventStore(filepath.Join(t.TempDir(), "other.yaml"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { other.Close() })
	created, err := other.Create(context.Background(), sampleEvent("from elsewhere"))
	require.NoError(t, err)
	content, err := os.ReadFile(other.path)
	require.NoError(t, err)

	require.NoError(t, writeFileAtomic(path, content))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return calls.Load() > 1 }, 200*time.Millisecond, 10*time.Millisecond)

	got, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "from elsewhere", got.Name)
}

func TestYAMLEventStoreKeepsStateOnBrokenEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	store, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.Create(context.Background(), sampleEvent("stays"))
	require.NoError(t, err)

	var calls atomic.Int32
	store.Subscribe(func() { calls.Add(1) })
	require.NoError(t, writeFileAtomic(path, []byte(strings.Repeat("[", 3))))

	assert.Never(t, func() bool { return calls.Load() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
	events, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestYAMLEventStoreIgnoresTruncatedFileUntilRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	store, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	created, err := store.Create(context.Background(), sampleEvent("stays"))
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var calls atomic.Int32
	store.Subscribe(func() { calls.Add(1) })

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.Never(t, func() bool { return calls.Load() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
	events, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].ID)

	edited := bytes.Replace(content, []byte("name: stays"), []byte("name: renamed"), 1)
	require.NoError(t, os.WriteFile(path, edited, 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	events, err = store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "renamed", events[0].Name)
}

func TestYAMLEventStoreAcceptsEmptyListEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	store, err := NewYAMLEventStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.Create(context.Background(), sampleEvent("removed"))
	require.NoError(t, err)

	var calls atomic.Int32
	store.Subscribe(func() { calls.Add(1) })
	require.NoError(t, writeFileAtomic(path, []byte("[]\n")))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	events, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}
