package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepInterval = time.Minute

// Memory keeps one token bucket per key in process memory. Buckets that
// have refilled completely are dropped on the next sweep.
type Memory struct {
	now   func() time.Time
	limit rate.Limit
	burst int

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSweep time.Time
}

func NewMemory(rpm, burst int) *Memory {
	if burst < 1 {
		burst = 1
	}
	return &Memory{
		now:      time.Now,
		limit:    rate.Limit(float64(rpm) / 60.0),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweepLocked(now)
	}
	lim, ok := m.limiters[key]
	if !ok {
		lim = rate.NewLimiter(m.limit, m.burst)
		m.limiters[key] = lim
	}
	m.mu.Unlock()

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute, nil
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0, nil
	}
	r.CancelAt(now)
	return false, delay, nil
}

// sweepLocked forgets buckets that are full again; a new bucket for the
// same key starts full, so nothing changes for that client.
func (m *Memory) sweepLocked(now time.Time) {
	for key, lim := range m.limiters {
		if lim.TokensAt(now) >= float64(m.burst) {
			delete(m.limiters, key)
		}
	}
	m.lastSweep = now
}
