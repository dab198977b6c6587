package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coupang-catalog/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window, per-key request limiter
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	tokens int
	start  time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
// Call Stop to end the loop.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(period * 2)
	return rl
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.clients {
				if now.Sub(w.start) > rl.period*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow takes one token for key and reports whether the request may proceed,
// along with the tokens left in the current window
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.clients[key] = &window{tokens: rl.limit - 1, start: now}
		return rl.limit > 0, max(rl.limit-1, 0)
	}
	if w.tokens > 0 {
		w.tokens--
		return true, w.tokens
	}
	return false, 0
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining := limiter.Allow(keyFunc(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(limiter.period.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				getRequestIDFromContext(c),
			))
			return
		}

		c.Next()
	}
}
