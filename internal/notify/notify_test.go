package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu         sync.Mutex
	permission Permission
	showErr    error
	titles     []string
	hooks      []Hooks
	closed     int
}

func (sink *fakeSink) RequestPermission(context.Context) (Permission, error) {
	return sink.permission, nil
}

func (sink *fakeSink) Show(title string, hooks Hooks) (Handle, error) {
	if sink.showErr != nil {
		return nil, sink.showErr
	}
	sink.mu.Lock()
	sink.titles = append(sink.titles, title)
	sink.hooks = append(sink.hooks, hooks)
	sink.mu.Unlock()
	hooks.OnShow()
	return &fakeHandle{sink: sink, onClose: hooks.OnClose}, nil
}

type fakeHandle struct {
	sink    *fakeSink
	onClose func()
}

func (handle *fakeHandle) Close() {
	handle.sink.mu.Lock()
	handle.sink.closed++
	handle.sink.mu.Unlock()
	handle.onClose()
}

type fakeSound struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (sound *fakeSound) Start() error {
	sound.mu.Lock()
	defer sound.mu.Unlock()
	sound.started++
	return nil
}

func (sound *fakeSound) Stop() {
	sound.mu.Lock()
	defer sound.mu.Unlock()
	sound.stopped++
}

func (sound *fakeSound) counts() (int, int) {
	sound.mu.Lock()
	defer sound.mu.Unlock()
	return sound.started, sound.stopped
}

func newTestAlerter(sink Sink, sound *fakeSound, clock clockwork.Clock) *Alerter {
	logger := zerolog.Nop()
	return NewAlerter(sink, AlerterConfig{
		NewSound:    func() Sound { return sound },
		AutoDismiss: time.Minute,
		Clock:       clock,
		Logger:      &logger,
	})
}

func TestFireStartsSoundAndStopsOnClick(t *testing.T) {
	sink := &fakeSink{permission: PermissionGranted}
	sound := &fakeSound{}
	alerter := newTestAlerter(sink, sound, clockwork.NewFakeClock())

	require.NoError(t, alerter.Fire(context.Background(), "Sunday Million - site, 109"))
	assert.Equal(t, []string{"Sunday Million - site, 109"}, sink.titles)

	started, stopped := sound.counts()
	assert.Equal(t, 1, started)
	assert.Equal(t, 0, stopped)

	sink.hooks[0].OnClick()
	sink.hooks[0].OnClose()
	_, stopped = sound.counts()
	assert.Equal(t, 1, stopped)
}

func TestFireAutoDismisses(t *testing.T) {
	sink := &fakeSink{permission: PermissionGranted}
	sound := &fakeSound{}
	clock := clockwork.NewFakeClock()
	alerter := newTestAlerter(sink, sound, clock)

	require.NoError(t, alerter.Fire(context.Background(), "title"))
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool {
		_, stopped := sound.counts()
		return stopped == 1
	}, time.Second, 5*time.Millisecond)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, 1, sink.closed)
}

func TestFireDenied(t *testing.T) {
	sink := &fakeSink{permission: PermissionDenied}
	sound := &fakeSound{}
	alerter := newTestAlerter(sink, sound, clockwork.NewFakeClock())

	err := alerter.Fire(context.Background(), "title")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, sink.titles)
	started, _ := sound.counts()
	assert.Zero(t, started)
}

func TestFireShowError(t *testing.T) {
	sink := &fakeSink{permission: PermissionGranted, showErr: errors.New("no display")}
	sound := &fakeSound{}
	alerter := newTestAlerter(sink, sound, clockwork.NewFakeClock())

	err := alerter.Fire(context.Background(), "title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
}

func TestAlerterWithoutSinkDegrades(t *testing.T) {
	alerter := NewAlerter(nil, AlerterConfig{})

	assert.NoError(t, alerter.Fire(context.Background(), "title"))
	permission, err := alerter.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, permission)
}

func TestLogSinkClosesOnce(t *testing.T) {
	sink := NewLogSink(zerolog.Nop())
	shown, closed := 0, 0

	handle, err := sink.Show("title", Hooks{
		OnShow:  func() { shown++ },
		OnClose: func() { closed++ },
	})
	require.NoError(t, err)
	handle.Close()
	handle.Close()

	assert.Equal(t, 1, shown)
	assert.Equal(t, 1, closed)
}
