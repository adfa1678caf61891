package fetch

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// OriginLimiter enforces a minimum inter-request interval per origin
// (career.acme.com, boards.greenhouse.io, etc). Waits are FIFO within an
// origin; unrelated origins never throttle each other.
type OriginLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
}

func NewOriginLimiter(minInterval time.Duration) *OriginLimiter {
	r := rate.Inf
	if minInterval > 0 {
		r = rate.Every(minInterval)
	}
	return &OriginLimiter{
		m: make(map[string]*rate.Limiter),
		r: r,
	}
}

func (ol *OriginLimiter) limiterFor(origin string) *rate.Limiter {
	ol.mu.Lock()
	defer ol.mu.Unlock()

	if lim, ok := ol.m[origin]; ok {
		return lim
	}
	lim := rate.NewLimiter(ol.r, 1)
	ol.m[origin] = lim
	return lim
}

// Wait blocks until the origin of raw is allowed another request, or the
// context is cancelled.
func (ol *OriginLimiter) Wait(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ol.limiterFor("_").Wait(ctx)
	}
	return ol.limiterFor(u.Host).Wait(ctx)
}
