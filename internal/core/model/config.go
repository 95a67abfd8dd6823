package model

import "time"

// TimeKeeperConfig contains runtime settings for the clock engine.
type TimeKeeperConfig struct {
	// StartingWindow is the length of the sliding window in which an event
	// counts as current. The window reaches half of it into the past.
	StartingWindow time.Duration
}
