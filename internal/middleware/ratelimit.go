package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"golang.org/x/time/rate"
)

const (
	limiterTTL = 15 * time.Minute
	// stale buckets are swept at most once per interval
	sweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
	rps       rate.Limit
	burst     int
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst per client
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

func (l *RateLimiter) sweep(now time.Time) {
	for k, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

// Handler rejects requests over the client's budget with a 429
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests")))
			return
		}
		c.Next()
	}
}
