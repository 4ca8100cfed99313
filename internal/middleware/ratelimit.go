package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"kasir-system/internal/api"
	"kasir-system/internal/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// RateLimit limits requests per client IP using a formatted rate such as
// "10-M" or "300-M".
func RateLimit(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return func(c *gin.Context) {
		key := instance.GetIPKey(c.Request)
		lctx, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			logging.FromContext(c.Request.Context()).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			api.Abort(c, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}
		c.Next()
	}, nil
}
