package ratelimit

import (
	"sync"
	"time"
)

// Lockout tracks authentication failures per key. Failures inside a rolling
// window count toward a threshold; reaching it locks the key for a full
// window from the tripping attempt, no matter how spread out the earlier
// failures were.
type Lockout struct {
	mu        sync.Mutex
	failures  map[string][]time.Time
	locked    map[string]time.Time
	threshold int
	window    time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewLockout creates a lockout tracker. threshold is the number of failures
// inside window that trips the lock.
func NewLockout(threshold int, window time.Duration) *Lockout {
	return &Lockout{
		failures:  make(map[string][]time.Time),
		locked:    make(map[string]time.Time),
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

// Locked reports whether the key is currently locked out.
func (l *Lockout) Locked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.isLocked(key)
}

// RecordFailure registers a failed attempt for the key and reports whether
// the key is now locked. Attempts against an already locked key do not
// extend the lock.
func (l *Lockout) RecordFailure(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isLocked(key) {
		return true
	}

	recent := append(l.prune(key), l.now())
	l.failures[key] = recent
	if len(recent) >= l.threshold {
		l.locked[key] = l.now().Add(l.window)
		return true
	}
	return false
}

// Reset clears the lock and all recorded failures for the key. Call on
// successful login.
func (l *Lockout) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, key)
	delete(l.locked, key)
}

// Remaining returns how many more failures the key can absorb before locking.
// Returns 0 when already locked.
func (l *Lockout) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isLocked(key) {
		return 0
	}
	remaining := l.threshold - len(l.prune(key))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// isLocked reports whether the key's lock is still in force, expiring it
// lazily. An expired lock also forgets the failures that tripped it, so the
// key starts over with a clean count. Caller must hold the mutex.
func (l *Lockout) isLocked(key string) bool {
	until, ok := l.locked[key]
	if !ok {
		return false
	}
	if l.now().Before(until) {
		return true
	}
	delete(l.locked, key)
	delete(l.failures, key)
	return false
}

// prune drops failures older than the window and returns what's left.
// Caller must hold the mutex.
func (l *Lockout) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	recent := l.failures[key][:0]
	for _, ts := range l.failures[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = recent
	return recent
}
