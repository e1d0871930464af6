package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/shared/ratelimiter"
)

// RateLimit はクライアントIPごとにリクエストを制限し、超過時は429を返します。
func RateLimit(limiter ratelimiter.RateLimiterInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		rateLimitRejections.WithLabelValues(routeOf(c)).Inc()
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"detail": "Request was throttled.",
		})
	}
}
