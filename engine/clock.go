package engine

import (
	"time"
)

// TimeProvider abstracts wall/monotonic time for the frame loop
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider provides the real system time with monotonic clock readings
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates a new monotonic time provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// GameClock is the study's monotonic clock: accumulated tick deltas since start
// Negative deltas are ignored so time never runs backwards
type GameClock struct {
	now time.Duration
}

// NewGameClock creates a clock at zero
func NewGameClock() *GameClock {
	return &GameClock{}
}

// Advance moves the clock forward by dt
func (c *GameClock) Advance(dt time.Duration) {
	if dt > 0 {
		c.now += dt
	}
}

// Now returns elapsed game time
func (c *GameClock) Now() time.Duration {
	return c.now
}

// FrameTimer turns TimeProvider readings into per-frame deltas, capped to avoid
// a huge catch-up step after the process was suspended
type FrameTimer struct {
	provider TimeProvider
	last     time.Time
	maxDelta time.Duration
}

// NewFrameTimer creates a frame timer starting at provider.Now()
func NewFrameTimer(provider TimeProvider, maxDelta time.Duration) *FrameTimer {
	return &FrameTimer{
		provider: provider,
		last:     provider.Now(),
		maxDelta: maxDelta,
	}
}

// Tick returns time elapsed since the previous Tick
func (f *FrameTimer) Tick() time.Duration {
	now := f.provider.Now()
	dt := now.Sub(f.last)
	f.last = now
	if dt < 0 {
		return 0
	}
	if f.maxDelta > 0 && dt > f.maxDelta {
		return f.maxDelta
	}
	return dt
}
