package animation

import "time"

// DefaultConfig flashes six times and then holds the highlight.
func DefaultConfig() Config {
	return Config{
		OnDuration: Range{
			Min: 350 * time.Millisecond,
			Max: 450 * time.Millisecond,
		},
		OffDuration: Range{
			Min: 250 * time.Millisecond,
			Max: 300 * time.Millisecond,
		},
		Burst: 6,
	}
}
