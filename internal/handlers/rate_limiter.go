package handlers

import (
	"strings"
	"sync"
	"time"
)

// rateLimiter gates contact form submissions per caller.
type rateLimiter interface {
	Allow(key string) bool
}

// ipThrottle counts submissions per key inside a fixed window. Entries for
// expired windows are dropped lazily whenever a new window opens, so the map
// stays bounded by the number of active callers.
type ipThrottle struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	buckets map[string]*throttleBucket
}

type throttleBucket struct {
	seen      int
	windowEnd time.Time
}

func newSimpleRateLimiter(limit int, window time.Duration, clock func() time.Time) rateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &ipThrottle{
		limit:   limit,
		window:  window,
		clock:   clock,
		buckets: make(map[string]*throttleBucket),
	}
}

func (t *ipThrottle) Allow(key string) bool {
	if t == nil {
		return true
	}
	if key = strings.TrimSpace(key); key == "" {
		key = "anonymous"
	}

	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()

	bucket := t.buckets[key]
	if bucket == nil || !now.Before(bucket.windowEnd) {
		t.dropExpired(now)
		t.buckets[key] = &throttleBucket{seen: 1, windowEnd: now.Add(t.window)}
		return true
	}

	if bucket.seen >= t.limit {
		return false
	}
	bucket.seen++
	return true
}

// dropExpired runs under t.mu.
func (t *ipThrottle) dropExpired(now time.Time) {
	for key, bucket := range t.buckets {
		if !now.Before(bucket.windowEnd) {
			delete(t.buckets, key)
		}
	}
}
