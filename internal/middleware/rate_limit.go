package middleware

import (
	"net/http"
	"strconv"
	"time"

	"companymcp/internal/caching"
	"companymcp/internal/common"
	"companymcp/internal/logger"
	"companymcp/internal/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const MsgRateLimited = "Too many requests, please slow down"

// RateLimit caps requests per user per window. Cache failures let the
// request through.
func RateLimit(cache caching.CacheService, scope string, limit int, window time.Duration, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cache == nil || limit <= 0 {
				return next(c)
			}
			userID, ok := common.GetUserIDFromContext(c.Request().Context())
			if !ok {
				return next(c)
			}

			key := scope + ":" + strconv.FormatInt(userID, 10)
			limited, err := cache.IsRateLimited(c.Request().Context(), key, limit, window)
			if err != nil {
				logger.FromEcho(c).Warn("rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if limited {
				m.RateLimited.Inc()
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", MsgRateLimited, nil))
			}
			return next(c)
		}
	}
}
