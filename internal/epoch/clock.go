// Package epoch derives the current epoch number from wall-clock time.
package epoch

import (
	"time"
)

// Clock maps time to discrete epoch numbers. Epoch 0 starts at genesis;
// epoch N covers [genesis + N*d, genesis + (N+1)*d). Because time moves
// forward, epoch numbers produced by a single Clock are monotonic.
type Clock struct {
	genesis  time.Time
	duration time.Duration
	now      func() time.Time
}

func NewClock(genesis time.Time, duration time.Duration) *Clock {
	return &Clock{
		genesis:  genesis,
		duration: duration,
		now:      time.Now,
	}
}

// NewClockWithNow is used in tests to pin the time source.
func NewClockWithNow(genesis time.Time, duration time.Duration, now func() time.Time) *Clock {
	return &Clock{
		genesis:  genesis,
		duration: duration,
		now:      now,
	}
}

// CurrentEpoch returns the epoch containing the current instant.
// Instants before genesis are clamped to epoch 0.
func (c *Clock) CurrentEpoch() uint64 {
	return c.EpochAt(c.now())
}

// EpochAt returns the epoch containing t.
func (c *Clock) EpochAt(t time.Time) uint64 {
	if !t.After(c.genesis) {
		return 0
	}
	return uint64(t.Sub(c.genesis) / c.duration)
}

// EpochDuration returns the configured epoch length.
func (c *Clock) EpochDuration() time.Duration {
	return c.duration
}
