package storage

import (
	"time"

	"golang.org/x/time/rate"
)

const limiterCapacity = 10_000

// Limiter allows each key at most requests events per window. Idle keys are
// evicted once their bucket would be full again.
type Limiter struct {
	limit    rate.Limit
	burst    int
	limiters *Cache[*rate.Limiter]
}

// NewLimiter returns nil when requests or per is not positive; a nil Limiter
// allows everything.
func NewLimiter(requests int, per time.Duration) *Limiter {
	if requests <= 0 || per <= 0 {
		return nil
	}

	return &Limiter{
		limit:    rate.Every(per / time.Duration(requests)),
		burst:    requests,
		limiters: NewCache[*rate.Limiter](limiterCapacity, per),
	}
}

// AllowAt reports whether key may act at now and consumes a token if so.
func (l *Limiter) AllowAt(key string, now time.Time) bool {
	if l == nil {
		return true
	}

	lim := l.limiters.GetOrSet(key, func() *rate.Limiter {
		return rate.NewLimiter(l.limit, l.burst)
	})
	return lim.AllowN(now, 1)
}
