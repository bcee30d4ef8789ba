// Package ratelimit caps how often one client may ask for an analysis, which
// bounds what a single caller can spend on the model provider.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/sozercan/poetry-assistant/internal/config"
)

type Limiter interface {
	// Allow reports whether key may proceed now and, if not, how long to wait.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

func New(cfg config.RateLimitConfig) (Limiter, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemory(cfg.RequestsPerMinute, cfg.Burst), nil
	case "redis":
		return NewRedisFromURL(cfg.RedisURL, cfg.RequestsPerMinute)
	default:
		return nil, fmt.Errorf("unknown ratelimit backend %q", cfg.Backend)
	}
}
