// Package notify raises the end-of-countdown alert: a visible notification
// plus a looping sound that stops when the notification goes away.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrPermissionDenied indicates notifications are not allowed.
var ErrPermissionDenied = errors.New("notifications not permitted")

// Permission is the answer to a permission request.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// DefaultAutoDismiss closes notifications nobody reacted to.
const DefaultAutoDismiss = time.Minute

// Hooks are invoked by a Sink over the lifetime of a notification.
type Hooks struct {
	OnShow  func()
	OnClick func()
	OnClose func()
}

// Handle refers to a visible notification.
type Handle interface {
	Close()
}

// Sink displays notifications.
type Sink interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Show(title string, hooks Hooks) (Handle, error)
}

// Sound is an audible alert that loops until stopped.
type Sound interface {
	Start() error
	Stop()
}

// AlerterConfig contains optional Alerter settings.
type AlerterConfig struct {
	NewSound    func() Sound
	AutoDismiss time.Duration
	Clock       clockwork.Clock
	Logger      *zerolog.Logger
}

// Alerter combines a Sink with a Sound.
type Alerter struct {
	sink        Sink
	newSound    func() Sound
	autoDismiss time.Duration
	clock       clockwork.Clock
	logger      zerolog.Logger
}

// NewAlerter creates an Alerter. A nil sink is allowed: alerts are logged
// and dropped.
func NewAlerter(sink Sink, config AlerterConfig) *Alerter {
	if config.AutoDismiss <= 0 {
		config.AutoDismiss = DefaultAutoDismiss
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Alerter{
		sink:        sink,
		newSound:    config.NewSound,
		autoDismiss: config.AutoDismiss,
		clock:       config.Clock,
		logger:      logger.With().Str("component", "notify").Logger(),
	}
}

// RequestPermission asks the sink for permission.
func (alerter *Alerter) RequestPermission(ctx context.Context) (Permission, error) {
	if alerter == nil || alerter.sink == nil {
		return PermissionDenied, nil
	}
	return alerter.sink.RequestPermission(ctx)
}

// Fire shows a notification titled title and loops the sound while it is
// visible.
func (alerter *Alerter) Fire(ctx context.Context, title string) error {
	if alerter == nil || alerter.sink == nil {
		log.Warn().Str("title", title).Msg("no notification sink, alert dropped")
		return nil
	}

	permission, err := alerter.sink.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("request notification permission: %w", err)
	}
	if permission != PermissionGranted {
		return ErrPermissionDenied
	}

	var sound Sound
	if alerter.newSound != nil {
		sound = alerter.newSound()
	}
	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			if sound != nil {
				sound.Stop()
			}
		})
	}

	handle, err := alerter.sink.Show(title, Hooks{
		OnShow: func() {
			if sound == nil {
				return
			}
			if err := sound.Start(); err != nil {
				alerter.logger.Error().Err(err).Str("title", title).Msg("alarm sound failed")
			}
		},
		OnClick: stop,
		OnClose: stop,
	})
	if err != nil {
		stop()
		return fmt.Errorf("show notification: %w", err)
	}

	alerter.clock.AfterFunc(alerter.autoDismiss, func() {
		handle.Close()
		stop()
	})

	alerter.logger.Info().Str("title", title).Msg("alert raised")
	return nil
}
