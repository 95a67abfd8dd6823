package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogSink writes notifications to a logger. Used when no desktop is around.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "log_sink").Logger()}
}

// RequestPermission always grants.
func (sink *LogSink) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

// Show logs title and reports the notification as shown.
func (sink *LogSink) Show(title string, hooks Hooks) (Handle, error) {
	sink.logger.Info().Str("title", title).Msg("time to register")
	if hooks.OnShow != nil {
		hooks.OnShow()
	}
	return &logHandle{onClose: hooks.OnClose}, nil
}

type logHandle struct {
	once    sync.Once
	onClose func()
}

func (handle *logHandle) Close() {
	handle.once.Do(func() {
		if handle.onClose != nil {
			handle.onClose()
		}
	})
}
