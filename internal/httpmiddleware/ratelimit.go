package httpmiddleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter enforces a fixed-window per-IP request limit backed by redis,
// so the limit holds across replicas.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing perMinute requests per IP.
func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	if perMinute <= 0 {
		perMinute = 120
	}
	return &RedisLimiter{client: client, limit: perMinute, window: time.Minute}
}

// GinMiddleware returns a gin handler enforcing the limit. Redis outages fail
// open: the request proceeds and the error is logged.
func (l *RedisLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		allowed, err := l.allow(c.Request.Context(), ip)
		if err != nil {
			log.Printf("rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *RedisLimiter) allow(ctx context.Context, ip string) (bool, error) {
	windowStart := time.Now().Truncate(l.window).Unix()
	key := fmt.Sprintf("ratelimit:%s:%d", ip, windowStart)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(l.limit), nil
}
