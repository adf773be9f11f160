package service

import (
	"sync"
	"time"
)

// RateLimiter tracks failed login attempts per username in memory and
// applies a temporary lockout once the failure threshold is reached.
//
// The state is process-local and non-durable: the persisted locked_until
// field on the user row is the source of truth across restarts, and this
// limiter acts as a write-through cache that short-circuits repeat
// offenders without a store round-trip. It also covers usernames that have
// no user row at all, so probing nonexistent accounts locks out the same
// way probing real ones does.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	threshold int
	lockout   time.Duration

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

type limiterEntry struct {
	failures    int
	lockedUntil time.Time
}

// NewRateLimiter constructs a limiter that locks a username out for the
// lockout duration after threshold consecutive failures.
func NewRateLimiter(threshold int, lockout time.Duration) *RateLimiter {
	return &RateLimiter{
		entries:   make(map[string]*limiterEntry),
		threshold: threshold,
		lockout:   lockout,
		now:       time.Now,
	}
}

// RecordFailure increments the failure count for the username and reports
// whether the failure crossed the lockout threshold.
func (rl *RateLimiter) RecordFailure(username string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[username]
	if !ok {
		entry = &limiterEntry{}
		rl.entries[username] = entry
	}

	entry.failures++
	if entry.failures >= rl.threshold {
		entry.lockedUntil = rl.now().Add(rl.lockout)
		return true
	}

	return false
}

// IsLocked reports whether the username is currently locked out. A lockout
// whose window has passed is cleaned up lazily.
func (rl *RateLimiter) IsLocked(username string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[username]
	if !ok {
		return false
	}

	if entry.lockedUntil.IsZero() {
		return false
	}

	if !rl.now().Before(entry.lockedUntil) {
		// lockout expired, start fresh
		delete(rl.entries, username)
		return false
	}

	return true
}

// Lock re-warms the in-memory state from a persisted lockout, so that a
// user found locked in the store is refused without further store reads.
func (rl *RateLimiter) Lock(username string, until time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.entries[username] = &limiterEntry{
		failures:    rl.threshold,
		lockedUntil: until,
	}
}

// Clear resets all failure state for the username. Called on successful
// login and on redeemed password reset.
func (rl *RateLimiter) Clear(username string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.entries, username)
}
