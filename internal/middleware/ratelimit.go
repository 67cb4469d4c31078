package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizzine/quizzine-backend/internal/response"
)

// RateLimiter is a per-client token bucket keyed by IP. It protects the
// unauthenticated surfaces (login, register, share-code resolution) from
// brute forcing.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	window   time.Duration
}

type bucket struct {
	remaining int
	refilled  time.Time
}

// NewRateLimiter allows capacity requests per window per client IP.
func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		window:   window,
	}

	go func() {
		for range time.Tick(time.Minute) {
			rl.evictIdle()
		}
	}()

	return rl
}

// Middleware returns the Gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{remaining: rl.capacity, refilled: time.Now()}
		rl.buckets[ip] = b
	}

	if elapsed := time.Since(b.refilled); elapsed >= rl.window {
		b.remaining = rl.capacity
		b.refilled = time.Now()
	}

	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.buckets {
		if time.Since(b.refilled) > 3*rl.window {
			delete(rl.buckets, ip)
		}
	}
}
