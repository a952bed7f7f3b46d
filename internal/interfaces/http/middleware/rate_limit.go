package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/turtacn/cyberrisk/pkg/logger"
)

// tokenBucket refills continuously at rate tokens per second up to capacity.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	rate       float64
	lastRefill time.Time
}

func newTokenBucket(capacity, rate float64, now time.Time) *tokenBucket {
	return &tokenBucket{capacity: capacity, tokens: capacity, rate: rate, lastRefill: now}
}

// take consumes one token. When none is left it reports how long until one is.
func (tb *tokenBucket) take(now time.Time) (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if elapsed := now.Sub(tb.lastRefill).Seconds(); elapsed > 0 {
		tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed*tb.rate)
		tb.lastRefill = now
	}
	if tb.tokens >= 1 {
		tb.tokens--
		return true, 0
	}
	wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
	return false, wait
}

// LoginThrottle limits authentication attempts to perMinute per client IP.
// Idle buckets expire from the cache once they would have refilled anyway.
// perMinute <= 0 disables throttling.
func LoginThrottle(perMinute int, log logger.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	capacity := float64(perMinute)
	rate := capacity / 60
	buckets := cache.New(2*time.Minute, 5*time.Minute)
	var mu sync.Mutex

	bucketFor := func(ip string, now time.Time) *tokenBucket {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets.Get(ip)
		if !ok {
			b = newTokenBucket(capacity, rate, now)
		}
		buckets.SetDefault(ip, b)
		return b.(*tokenBucket)
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, wait := bucketFor(ip, time.Now()).take(time.Now())
		if !allowed {
			log.Warn(c.Request.Context(), "login attempts throttled",
				logger.String("client_ip", ip), logger.Int("limit_per_minute", perMinute))
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, please try again later"})
			return
		}
		c.Next()
	}
}
