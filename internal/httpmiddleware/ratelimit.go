package httpmiddleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a request from a key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// GinRateLimit enforces per-IP limits with the given limiter.
func GinRateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(c.Request.Context(), ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

// TokenBucket is an in-memory per-key limiter for single-instance runs.
type TokenBucket struct {
	capacity int
	rate     int
	mu       sync.Mutex
	state    map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket creates a limiter with capacity tokens refilled at
// perMinute per minute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		state:    make(map[string]*bucket),
	}
}

// Allow implements Limiter.
func (l *TokenBucket) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state[key]
	now := time.Now()
	if !ok {
		b = &bucket{tokens: l.capacity - 1, last: now}
		l.state[key] = b
		return true
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RedisFixedWindow is a shared per-minute counter so the limit holds
// across instances. Fails open when redis is unreachable.
type RedisFixedWindow struct {
	client *redis.Client
	perMin int
	prefix string
}

// NewRedisFixedWindow creates a redis-backed limiter.
func NewRedisFixedWindow(client *redis.Client, perMinute int) *RedisFixedWindow {
	return &RedisFixedWindow{client: client, perMin: perMinute, prefix: "swiftpass:ratelimit:"}
}

// Allow implements Limiter with INCR on a key scoped to the current
// minute, expired two windows out.
func (l *RedisFixedWindow) Allow(ctx context.Context, key string) bool {
	window := time.Now().Format("200601021504")
	redisKey := l.prefix + key + ":" + window
	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		l.client.Expire(ctx, redisKey, 2*time.Minute)
	}
	return n <= int64(l.perMin)
}
