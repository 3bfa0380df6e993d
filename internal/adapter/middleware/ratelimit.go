package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealdesk/internal/infrastructure/cache"
	"dealdesk/internal/infrastructure/logger"
	"dealdesk/internal/infrastructure/metrics"
)

// RateLimit allows limit requests per counter window for each operator,
// falling back to the client IP when no operator is set. limit <= 0
// disables it. A Redis failure lets the request through.
func RateLimit(counter *cache.WindowCounter, limit int, log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limit <= 0 || counter == nil {
			return next
		}
		return func(c echo.Context) error {
			who := OperatorID(c)
			if who == "" {
				who = "ip:" + c.RealIP()
			}

			n, resetIn, err := counter.Hit(c.Request().Context(), who, nowUTC())
			if err != nil {
				log.Warn("rate limiter unavailable", zap.Error(err))
				return next(c)
			}

			remaining := int64(limit) - n
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(limit) {
				secs := int64(resetIn.Seconds())
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.FormatInt(secs, 10))
				metrics.RateLimited.WithLabelValues(c.Path()).Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
