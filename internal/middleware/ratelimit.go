package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amansoomro062/codesign/internal/modules/serializer"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimit allows max requests per client IP in each fixed window, counted
// in Redis. When Redis fails the request is let through.
func RateLimit(rdb redis.Cmdable, max int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + c.ClientIP()

		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limit counter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		// first hit opens the window. A key left without a TTL would lock the
		// client out for good, so it is dropped when the expire cannot be set.
		if n == 1 {
			if err := rdb.Expire(context.WithoutCancel(ctx), key, window).Err(); err != nil {
				log.Warn("rate limit expire failed", zap.String("key", key), zap.Error(err))
				_ = rdb.Del(context.WithoutCancel(ctx), key).Err()
				c.Next()
				return
			}
		}

		if n > int64(max) {
			ttl, err := rdb.TTL(ctx, key).Result()
			if err == nil && ttl < 0 {
				// counter without expiry, reopen the window
				_ = rdb.Expire(context.WithoutCancel(ctx), key, window).Err()
			}
			if err != nil || ttl <= 0 {
				ttl = window
			}
			c.Header("Retry-After", strconv.FormatInt(int64((ttl+time.Second-1)/time.Second), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, serializer.TooManyRequests())
			return
		}
		c.Next()
	}
}
