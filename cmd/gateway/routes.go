package main

import (
	"fmt"

	"kasir-system/config"
	"kasir-system/internal/gateway/handlers"
	"kasir-system/internal/metrics"
	"kasir-system/internal/middleware"
	"kasir-system/internal/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// setupRouter mounts /health, /health/detailed and one reverse proxy per
// upstream under /api/v1/<service>/*path.
func setupRouter(cfg config.Config, logger *zap.Logger, m *metrics.Metrics, checker handlers.HealthChecker) (*gin.Engine, error) {
	limit, err := middleware.RateLimit(cfg.RateLimit.Gateway)
	if err != nil {
		return nil, err
	}

	r := server.NewEngine(cfg, logger, m, nil)
	r.Use(handlers.ServiceHeaders(checker))

	health := handlers.NewHealthHandler(checker)
	r.GET("/health", health.Health)
	r.GET("/health/detailed", health.Detailed)

	upstreams := map[string]string{
		"cafe":  cfg.Gateway.CafeURL,
		"farma": cfg.Gateway.FarmaURL,
	}
	api := r.Group("/api/v1", limit)
	for name, target := range upstreams {
		proxy, err := handlers.NewServiceProxy(name, target)
		if err != nil {
			return nil, fmt.Errorf("%s upstream %q: %w", name, target, err)
		}
		api.Any("/"+name+"/*path", proxy.Handle)
	}

	return r, nil
}
