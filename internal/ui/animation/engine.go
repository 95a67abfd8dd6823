package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains flash timing values.
type Config struct {
	OnDuration  Range
	OffDuration Range
	// Settle is how long the highlight stays on after a burst of flashes.
	Settle time.Duration
	// Burst is the number of flashes before settling; 0 flashes forever.
	Burst int
}

// Engine flashes an alert highlight on and off.
type Engine struct {
	mu     sync.Mutex
	config Config
	clock  clockwork.Clock
	update func(highlighted bool)
	cancel context.CancelFunc
	done   chan struct{}
	rng    *rand.Rand
}

// New creates a new animation engine. update is called from the engine's
// goroutine; UI callers must hop to the UI thread themselves.
func New(config Config, clock clockwork.Clock, update func(highlighted bool)) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		config: config,
		clock:  clock,
		update: update,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartFlash restarts the flash sequence. It ends when ctx is cancelled or
// Stop is called; the highlight is left on.
func (engine *Engine) StartFlash(ctx context.Context) {
	engine.start(ctx, func(runCtx context.Context) {
		for flash := 0; engine.config.Burst == 0 || flash < engine.config.Burst; flash++ {
			engine.update(true)
			if !engine.sleep(runCtx, engine.config.OnDuration.Random(engine.rng)) {
				break
			}
			engine.update(false)
			if !engine.sleep(runCtx, engine.config.OffDuration.Random(engine.rng)) {
				break
			}
		}
		engine.update(true)
		if engine.config.Settle > 0 {
			engine.sleep(runCtx, engine.config.Settle)
		}
	})
}

// Stop cancels the running sequence and waits for it to finish.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel, done := engine.cancel, engine.done
	engine.cancel, engine.done = nil, nil
	engine.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.Stop()

	runCtx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	engine.mu.Lock()
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		run(runCtx)
	}()
}

func (engine *Engine) sleep(ctx context.Context, duration time.Duration) bool {
	timer := engine.clock.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
