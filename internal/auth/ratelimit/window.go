package ratelimit

import (
	"sync"
	"time"
)

// window is one key's live counter.
type window struct {
	start time.Time
	count int
}

// FixedWindow is an in-process fixed-window limiter. Counters live in
// memory and reset when the process restarts; that is an accepted
// trade-off for a single-instance deployment.
type FixedWindow struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]window

	// sweepEvery bounds how often expired windows are reaped. Reaping
	// happens inline during Allow to avoid a background goroutine.
	sweepEvery time.Duration
	lastSweep  time.Time
}

// Option adjusts limiter construction.
type Option func(*FixedWindow)

// WithClock substitutes the time source. Tests drive window expiry with
// a fake clock through this.
func WithClock(now func() time.Time) Option {
	return func(fw *FixedWindow) { fw.now = now }
}

// NewFixedWindow creates a limiter with the given budget.
func NewFixedWindow(cfg Config, opts ...Option) *FixedWindow {
	fw := &FixedWindow{
		cfg:        cfg,
		now:        time.Now,
		windows:    make(map[string]window),
		sweepEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(fw)
	}
	fw.lastSweep = fw.now()
	return fw
}

// Allow implements Limiter.
func (fw *FixedWindow) Allow(key string) bool {
	if fw.cfg.Max <= 0 {
		return false
	}

	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.maybeSweep(now)

	w, ok := fw.windows[key]
	if !ok || now.Sub(w.start) >= fw.cfg.Window {
		// First attempt of a fresh window.
		fw.windows[key] = window{start: now, count: 1}
		return true
	}

	if w.count < fw.cfg.Max {
		w.count++
		fw.windows[key] = w
		return true
	}

	return false
}

// Remaining reports the budget left for key in its current window.
func (fw *FixedWindow) Remaining(key string) int {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	w, ok := fw.windows[key]
	if !ok || now.Sub(w.start) >= fw.cfg.Window {
		return fw.cfg.Max
	}
	if left := fw.cfg.Max - w.count; left > 0 {
		return left
	}
	return 0
}

// maybeSweep drops expired windows. Caller holds fw.mu.
func (fw *FixedWindow) maybeSweep(now time.Time) {
	if now.Sub(fw.lastSweep) < fw.sweepEvery {
		return
	}
	fw.lastSweep = now
	for key, w := range fw.windows {
		if now.Sub(w.start) >= fw.cfg.Window {
			delete(fw.windows, key)
		}
	}
}
