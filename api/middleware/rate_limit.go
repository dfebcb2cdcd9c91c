package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter implements a fixed-window per-key limiter.
type RateLimiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count      int
	windowFrom time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowFrom) >= rl.window {
		rl.buckets[key] = &bucket{count: 1, windowFrom: now}
		rl.pruneLocked(now)
		return true
	}

	if b.count >= rl.limit {
		return false
	}

	b.count++
	return true
}

// pruneLocked drops expired buckets so the map does not grow with every
// client IP ever seen. Caller must hold mu.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	if len(rl.buckets) < 10000 {
		return
	}
	for key, b := range rl.buckets {
		if now.Sub(b.windowFrom) >= rl.window {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit applies a global per-IP request limit.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": limiter.window.Seconds(),
			})
			return
		}

		c.Next()
	}
}

// AuthRateLimiter provides stricter rate limiting for authentication endpoints
func AuthRateLimiter() gin.HandlerFunc {
	// 5 requests per minute per IP for auth endpoints
	limiter := NewRateLimiter(5, time.Minute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many authentication attempts, please try again later",
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
