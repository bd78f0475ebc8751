package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateLimiter struct {
	requests map[string]*clientRequest
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

type clientRequest struct {
	count     int
	resetTime time.Time
}

// Invite tokens are bearer secrets; the accept endpoints get a much
// smaller per-IP budget than the rest of the API to slow down guessing.
var (
	generalLimiter = newRateLimiter(100, time.Minute)
	acceptLimiter  = newRateLimiter(10, time.Minute)
)

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string]*clientRequest),
		limit:    limit,
		window:   window,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		rl := generalLimiter
		if strings.HasSuffix(c.Request.URL.Path, "/accept") {
			rl = acceptLimiter
		}

		if retryAfter, ok := rl.allow(c.ClientIP()); !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *rateLimiter) allow(ip string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.requests[ip]

	if !exists || now.After(client.resetTime) {
		rl.requests[ip] = &clientRequest{
			count:     1,
			resetTime: now.Add(rl.window),
		}
		return 0, true
	}

	if client.count >= rl.limit {
		return client.resetTime.Sub(now), false
	}

	client.count++
	return 0, true
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, client := range rl.requests {
		if now.After(client.resetTime) {
			delete(rl.requests, ip)
		}
	}
}
