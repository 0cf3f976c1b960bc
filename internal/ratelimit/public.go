package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const keyPublicEndpoint = "bookingcore:ratelimit:public:%s"

// PublicLimiter throttles unauthenticated endpoints per client key. It uses the
// shared redis bucket when available and per-process limiters otherwise.
type PublicLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
	perSec float64
	burst  int

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewPublicLimiter(cfg config.RateLimitConfig, client *redis.Client, log *zap.Logger) *PublicLimiter {
	return &PublicLimiter{
		log:    log.Named("ratelimit.public"),
		bucket: NewTokenBucket(client),
		perSec: cfg.PublicRate,
		burst:  cfg.PublicBurst,
		local:  make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the caller identified by key may proceed.
func (l *PublicLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.perSec <= 0 || l.burst <= 0 {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}

	if l.bucket != nil {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyPublicEndpoint, key), l.perSec, l.burst)
		if err == nil {
			return res.Allowed
		}
		l.log.Warn("redis rate limit failed, falling back to local limiter", zap.Error(err))
	}

	return l.limiter(key).Allow()
}

func (l *PublicLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.local[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.perSec), l.burst)
		l.local[key] = lim
	}
	return lim
}
