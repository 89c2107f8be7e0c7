// Package ratelimit provides per-key token bucket limiting for inbound
// requests, plus a failure-count lockout used for login protection.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keys are client IPs, so the map can grow without bound on a public
// deployment. Entries idle longer than this are evicted by the janitor.
const idleEvictAfter = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages one token bucket per key.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed rate limiter allowing rps requests per second with
// the given burst, and starts its eviction janitor.
func New(rps float64, burst int) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go krl.janitor()

	return krl
}

// Allow reports whether a request for the given key should proceed.
// It never blocks.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.get(key).Allow()
}

// Wait blocks until a request for the given key is allowed or ctx is done.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.get(key).Wait(ctx)
}

func (krl *KeyedRateLimiter) get(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	b, ok := krl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// Stop shuts down the janitor goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

func (krl *KeyedRateLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.evictIdle(time.Now())
		}
	}
}

func (krl *KeyedRateLimiter) evictIdle(now time.Time) {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	for key, b := range krl.buckets {
		if now.Sub(b.lastSeen) > idleEvictAfter {
			delete(krl.buckets, key)
		}
	}
}
