package session

import (
	"time"

	"golang.org/x/time/rate"
)

// throttle lets one proposal per key through per window. A different key
// starts a fresh window, so only repeats of the same key are coalesced.
type throttle struct {
	window  time.Duration
	now     func() time.Time
	key     string
	limiter *rate.Limiter
}

func newThrottle(window time.Duration, now func() time.Time) *throttle {
	return &throttle{window: window, now: now}
}

func (t *throttle) allow(key string) bool {
	if t.window <= 0 {
		return true
	}
	if t.limiter == nil || key != t.key {
		t.key = key
		t.limiter = rate.NewLimiter(rate.Every(t.window), 1)
	}
	return t.limiter.AllowN(t.now(), 1)
}
