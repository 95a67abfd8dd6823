package animation

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	frames []bool
}

func (r *recorder) record(highlighted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, highlighted)
}

func (r *recorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.frames...)
}

func TestRangeRandomStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	value := Range{Min: time.Second, Max: 2 * time.Second}
	for i := 0; i < 100; i++ {
		sample := value.Random(rng)
		assert.GreaterOrEqual(t, sample, value.Min)
		assert.Less(t, sample, value.Max)
	}
	assert.Equal(t, time.Second, Range{Min: time.Second}.Random(rng))
}

func TestFlashBurstEndsHighlighted(t *testing.T) {
	frames := &recorder{}
	engine := New(Config{
		OnDuration:  Range{Min: time.Millisecond},
		OffDuration: Range{Min: time.Millisecond},
		Burst:       2,
	}, nil, frames.record)

	engine.StartFlash(context.Background())
	assert.Eventually(t, func() bool { return len(frames.snapshot()) == 5 }, time.Second, time.Millisecond)
	engine.Stop()

	assert.Equal(t, []bool{true, false, true, false, true}, frames.snapshot())
}

func TestStopInterruptsEndlessFlash(t *testing.T) {
	frames := &recorder{}
	clock := clockwork.NewFakeClock()
	engine := New(Config{
		OnDuration:  Range{Min: time.Second},
		OffDuration: Range{Min: time.Second},
	}, clock, frames.record)

	engine.StartFlash(context.Background())
	assert.Eventually(t, func() bool { return len(frames.snapshot()) == 1 }, time.Second, time.Millisecond)
	engine.Stop()

	assert.Equal(t, []bool{true, true}, frames.snapshot())
	engine.Stop()
}
