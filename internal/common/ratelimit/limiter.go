// internal/common/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"time"

	"greenguide/internal/common/logger"
	"greenguide/internal/common/metrics"
)

// Counter is the fixed-window counter backing the limiter.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, clientKey string) Decision
}

// FixedWindow allows Limit requests per Window per client key.
type FixedWindow struct {
	counter   Counter
	limit     int
	window    time.Duration
	keyPrefix string
	logger    logger.Logger
}

func NewFixedWindow(counter Counter, limit int, window time.Duration, keyPrefix string, log logger.Logger) *FixedWindow {
	return &FixedWindow{
		counter:   counter,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
		logger:    log,
	}
}

// Allow fails open: a backend error lets the request through.
func (f *FixedWindow) Allow(ctx context.Context, clientKey string) Decision {
	key := f.keyPrefix + ":" + clientKey

	count, ttl, err := f.counter.IncrWindow(ctx, key, f.window)
	if err != nil {
		metrics.RateLimitDecisions.WithLabelValues("error").Inc()
		f.logger.Warn("Rate limiter unavailable, allowing request", map[string]interface{}{
			"client": clientKey,
			"error":  err.Error(),
		})
		return Decision{Allowed: true, Limit: f.limit, Remaining: f.limit}
	}

	remaining := f.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	if int(count) > f.limit {
		metrics.RateLimitDecisions.WithLabelValues("limited").Inc()
		return Decision{Allowed: false, Limit: f.limit, Remaining: 0, RetryAfter: ttl}
	}

	metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
	return Decision{Allowed: true, Limit: f.limit, Remaining: remaining, RetryAfter: ttl}
}

// Unlimited is used when rate limiting is disabled.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) Decision {
	return Decision{Allowed: true}
}
