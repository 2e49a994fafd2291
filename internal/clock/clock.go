package clock

import (
	"sync"
	"time"
)

// Clock supplies the current UTC time. Every expiry comparison in the lease
// manager uses timestamps from one Clock instance so acquire, extend and sweep
// stay consistent with each other even when application hosts disagree on the
// wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the real-time clock.
func System() Clock {
	return systemClock{}
}

// Frozen is a manually advanced clock for tests.
type Frozen struct {
	mu  sync.Mutex
	now time.Time
}

func NewFrozen(now time.Time) *Frozen {
	return &Frozen{now: now.UTC()}
}

func (f *Frozen) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Frozen) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set jumps the clock to now.
func (f *Frozen) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now.UTC()
}
