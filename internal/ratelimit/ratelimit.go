package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides if a request from key should be allowed.
// Allow returns (allowed, retryAfterSeconds). When allowed is false, retryAfterSeconds
// may be set for the Retry-After response header (0 = omit).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop allows all requests.
type Noop struct{}

func (Noop) Allow(key string) (bool, int) { return true, 0 }

// idleAfter is how long a key's bucket may sit unused before it is dropped.
const idleAfter = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemory is a token bucket per key (single-instance only). Each key may
// burst up to limit requests and refills at limit per window.
type InMemory struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     int
	every     rate.Limit
	lastSweep time.Time
	nowFunc   func() time.Time
}

// NewInMemory allows up to limit requests per key per window.
func NewInMemory(limit int, window time.Duration) *InMemory {
	if limit < 1 {
		limit = 1
	}
	return &InMemory{
		buckets: make(map[string]*bucket),
		limit:   limit,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		nowFunc: time.Now,
	}
}

func (r *InMemory) Allow(key string) (allowed bool, retryAfterSec int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nowFunc()
	r.sweep(now)

	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.every, r.limit)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, int(math.Max(1, math.Ceil(delay.Seconds())))
}

// sweep drops idle buckets at most once per idleAfter.
func (r *InMemory) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < idleAfter {
		return
	}
	r.lastSweep = now
	for key, b := range r.buckets {
		if now.Sub(b.lastSeen) >= idleAfter {
			delete(r.buckets, key)
		}
	}
}
