package gateway

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedKeys caps the number of tracked rate-limit keys to prevent
// memory exhaustion from clients rotating source IPs.
const maxTrackedKeys = 4096

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per key (client IP) with a token bucket.
// Safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing rpm requests per minute per key.
// rpm <= 0 disables limiting.
func NewRateLimiter(rpm, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		entries: make(map[string]*limiterEntry),
		burst:   burst,
		now:     time.Now,
	}
	if rpm > 0 {
		rl.limit = rate.Limit(float64(rpm) / 60)
	}
	return rl
}

// Enabled reports whether requests are being limited.
func (rl *RateLimiter) Enabled() bool { return rl != nil && rl.limit > 0 }

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	if !rl.Enabled() {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[key]
	if !ok {
		if len(rl.entries) >= maxTrackedKeys {
			rl.prune(now)
		}
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// prune drops idle keys, then evicts arbitrary keys if still at the cap.
func (rl *RateLimiter) prune(now time.Time) {
	for k, e := range rl.entries {
		if now.Sub(e.lastSeen) >= time.Minute {
			delete(rl.entries, k)
		}
	}
	for len(rl.entries) >= maxTrackedKeys {
		for k := range rl.entries {
			delete(rl.entries, k)
			break
		}
	}
}
