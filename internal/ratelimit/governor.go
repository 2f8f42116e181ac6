// Package ratelimit provides the per-service rate governor.
// Each upstream service gets its own token bucket, so throttling one
// service never blocks calls to another.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Governor enforces a requests-per-minute budget per named service.
type Governor struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rpm      map[string]int
	fallback int // rpm for services not configured explicitly
}

// NewGovernor creates a governor from a service->rpm table.
// Services absent from the table fall back to fallbackRPM.
func NewGovernor(rpm map[string]int, fallbackRPM int) *Governor {
	g := &Governor{
		limiters: make(map[string]*rate.Limiter, len(rpm)),
		rpm:      make(map[string]int, len(rpm)),
		fallback: fallbackRPM,
	}
	for name, n := range rpm {
		g.rpm[name] = n
	}
	return g
}

func (g *Governor) limiter(service string) *rate.Limiter {
	g.mu.RLock()
	lim, ok := g.limiters[service]
	g.mu.RUnlock()
	if ok {
		return lim
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if lim, ok := g.limiters[service]; ok {
		return lim
	}
	n, ok := g.rpm[service]
	if !ok {
		n = g.fallback
	}
	// Burst of 1 serializes calls at the minimum inter-call interval.
	lim = rate.NewLimiter(rate.Limit(float64(n)/60.0), 1)
	g.limiters[service] = lim
	return lim
}

// Wait blocks until the named service's budget permits a call, or the
// context is cancelled.
func (g *Governor) Wait(ctx context.Context, service string) error {
	return g.limiter(service).Wait(ctx)
}

// Allow reports whether a call to the named service is permitted right
// now without waiting.
func (g *Governor) Allow(service string) bool {
	return g.limiter(service).Allow()
}
