package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// OperationLimiter throttles outbound GraphQL operations per operation name
// so a burst of client activity cannot hammer the booking backend.
type OperationLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

func NewOperationLimiter(config Config) *OperationLimiter {
	return &OperationLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewOperationLimiterWithDefaults() *OperationLimiter {
	return NewOperationLimiter(DefaultConfig())
}

func (l *OperationLimiter) limiter(operation string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[operation]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.limiters[operation]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(l.defaults.RequestsPerSecond), l.defaults.BurstSize)
	l.limiters[operation] = lim
	return lim
}

// SetOperationLimit overrides the default rate for one operation.
func (l *OperationLimiter) SetOperationLimit(operation string, rps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiters[operation] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the operation may proceed or the context is done.
func (l *OperationLimiter) Wait(ctx context.Context, operation string) error {
	return l.limiter(operation).Wait(ctx)
}
