package middleware

import (
	"net/http"

	"github.com/SparshM8/Farm-Technology/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit rejects over-limit clients before the handler runs. A failing
// limiter backend lets the request through.
func RateLimit(limiter ratelimit.Limiter, name string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Errorf("Middleware: %s rate limiter unavailable, allowing %s: %v", name, ip, err)
			c.Next()
			return
		}
		if !allowed {
			log.Warnf("Middleware: %s rate limit exceeded for %s", name, ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": "error", "message": "Slow down, too many requests."})
			return
		}
		c.Next()
	}
}
