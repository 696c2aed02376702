package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thanghienlanh/web33/internal/metrics"
	"github.com/thanghienlanh/web33/internal/ratelimit"
	"github.com/thanghienlanh/web33/internal/utils"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

// ClientID identifies the caller for rate limiting.
func ClientID(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimit admits at most maxRequests per window for each client under
// scope. Rejections get 429 with the limiter's message; a limiter failure
// gets 500.
func RateLimit(limiter ratelimit.Limiter, scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := scope + "_" + ClientID(c)

		result, err := limiter.Check(c.Request.Context(), identifier, maxRequests, window)
		if err != nil {
			logger.Log.Error("rate limit check failed", zap.String("scope", scope), zap.Error(err))
			utils.AbortWithError(c, http.StatusInternalServerError, utils.NewErrorResponse(err.Error()))
			return
		}
		if !result.Valid {
			metrics.RateLimitRejected(scope)
			utils.AbortWithError(c, http.StatusTooManyRequests, utils.NewErrorResponse(result.Errors[0]))
			return
		}

		c.Next()
	}
}
