package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/ratelimit"
)

// RateLimit counts requests per client IP. A limiter backend error lets the
// request through and is attached to the context for the request logger.
func RateLimit(limiter ratelimit.Limiter, name, message string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		reset := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
		if reset < 0 {
			reset = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(reset))

		if !res.Allowed {
			m.RateLimited(name)
			c.Header("Retry-After", strconv.Itoa(reset))
			apierrors.TooManyRequests(c, message)
			return
		}
		c.Next()
	}
}
