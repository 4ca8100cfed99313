// Package server builds the gin engine shared by the cafe, farma and gateway
// binaries and runs it alongside the gRPC health server.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"kasir-system/config"
	"kasir-system/internal/healthcheck"
	"kasir-system/internal/metrics"
	"kasir-system/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewEngine returns a gin engine with recovery, CORS and observability
// installed, plus /metrics and, when pinger is set, /healthz.
func NewEngine(cfg config.Config, logger *zap.Logger, m *metrics.Metrics, pinger healthcheck.Pinger) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.HTTP.AllowedOrigins...))
	r.Use(middleware.Observability(logger, m, cfg.Service))

	r.GET("/metrics", m.Handler())
	if pinger != nil {
		r.GET("/healthz", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.Service})
		})
	}
	return r
}

func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// Run serves HTTP, and gRPC health when health is set, until ctx is done,
// then shuts both down gracefully.
func Run(ctx context.Context, logger *zap.Logger, srv *http.Server, health *healthcheck.Server, grpcAddr string) error {
	runCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()

	errCh := make(chan error, 2)
	healthDone := make(chan struct{})

	if health != nil {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return err
		}
		go func() {
			defer close(healthDone)
			health.Run(runCtx)
		}()
		go func() {
			if err := health.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	} else {
		close(healthDone)
	}

	go func() {
		logger.Info("http_server_start", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-runCtx.Done():
	case runErr = <-errCh:
		logger.Error("server_error", zap.Error(runErr))
	}
	stopHealth()
	<-healthDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}
	if health != nil {
		health.Stop()
	}
	return runErr
}
