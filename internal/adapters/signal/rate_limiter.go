package signal

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepEvery = time.Minute

// JoinRateLimiter throttles join attempts per browser client, so opening
// more tabs does not buy more attempts.
type JoinRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func NewJoinRateLimiter(limit rate.Limit, burst int) *JoinRateLimiter {
	return &JoinRateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		limit:     limit,
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (rl *JoinRateLimiter) Allow(client string) bool {
	return rl.AllowAt(client, time.Now())
}

func (rl *JoinRateLimiter) AllowAt(client string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= sweepEvery {
		rl.sweep(now)
	}
	l, ok := rl.limiters[client]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[client] = l
	}
	return l.AllowN(now, 1)
}

// sweep forgets limiters that refilled completely; a fresh one behaves the same.
func (rl *JoinRateLimiter) sweep(now time.Time) {
	for client, l := range rl.limiters {
		if l.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, client)
		}
	}
	rl.lastSweep = now
}

func (rl *JoinRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
