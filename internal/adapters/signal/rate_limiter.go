package signal

import (
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per live connection.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[domain.ConnID]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[domain.ConnID]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) Allow(id domain.ConnID) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters[id]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[id] = limiter
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// Forget drops the bucket of a closed connection.
func (rl *RateLimiter) Forget(id domain.ConnID) {
	rl.mu.Lock()
	delete(rl.limiters, id)
	rl.mu.Unlock()
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
