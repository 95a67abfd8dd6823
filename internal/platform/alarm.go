package platform

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const alarmPause = 1500 * time.Millisecond

// Alarm loops an OS alert sound until stopped. Without a usable sound
// player it rings the terminal bell.
type Alarm struct {
	argv  []string
	bell  io.Writer
	pause time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAlarm returns an alarm using the platform sound player.
func NewAlarm() *Alarm {
	return newAlarm(alarmCommand(), os.Stderr, alarmPause)
}

func newAlarm(argv []string, bell io.Writer, pause time.Duration) *Alarm {
	return &Alarm{argv: argv, bell: bell, pause: pause}
}

// Start begins looping. Starting a running alarm is a no-op.
func (alarm *Alarm) Start() error {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()
	if alarm.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	alarm.cancel = cancel
	alarm.done = make(chan struct{})
	go alarm.loop(ctx, alarm.done)
	return nil
}

// Stop ends the loop and waits for the current sound to be killed.
func (alarm *Alarm) Stop() {
	alarm.mu.Lock()
	cancel, done := alarm.cancel, alarm.done
	alarm.cancel, alarm.done = nil, nil
	alarm.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (alarm *Alarm) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	argv := alarm.argv
	for {
		if len(argv) > 0 {
			err := exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
			if err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Str("player", argv[0]).Msg("alarm sound failed, using bell")
				argv = nil
			}
		}
		if len(argv) == 0 {
			_, _ = io.WriteString(alarm.bell, "\a")
		}

		timer := time.NewTimer(alarm.pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// lookupPlayer returns argv when its program is installed.
func lookupPlayer(argv ...string) []string {
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil
	}
	return argv
}
