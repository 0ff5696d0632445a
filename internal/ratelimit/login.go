// Package ratelimit throttles login attempts per client. The counters live
// in process memory: each replica enforces its own window.
package ratelimit

import (
	"sync"
	"time"
)

// LoginLimiter counts login attempts per key inside a fixed window. Once a
// key reaches the limit, further attempts are rejected until the window
// expires or the key is reset by a successful login.
type LoginLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	maxAttempts int
	window      time.Duration

	// now is swapped in tests to control the clock.
	now func() time.Time
}

type entry struct {
	count       int
	windowStart time.Time
}

// NewLoginLimiter returns a limiter allowing maxAttempts per window per key.
func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		entries:     make(map[string]*entry),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit. The check and the increment happen under one lock, so concurrent
// callers cannot both slip through the last slot.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true
	}

	if e.count >= l.maxAttempts {
		return false
	}

	e.count++
	return true
}

// Reset clears the counter for key. Called after a successful login so a
// user who finally remembers their password is not locked out.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, key)
}

// Cleanup drops entries whose window has expired. Run periodically to keep
// the map from growing without bound.
func (l *LoginLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, key)
		}
	}
}

// StartCleanup runs Cleanup on the given interval until stop is closed.
func (l *LoginLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
