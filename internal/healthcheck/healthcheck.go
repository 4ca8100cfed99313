// Package healthcheck serves grpc.health.v1 and reflection for a service and
// keeps its serving status in step with the database.
package healthcheck

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const DefaultInterval = 15 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	service  string
	pinger   Pinger
	interval time.Duration
	logger   *zap.Logger

	grpc   *grpc.Server
	health *health.Server
}

func NewServer(service string, pinger Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.L()
	}
	s := &Server{
		service:  service,
		pinger:   pinger,
		interval: DefaultInterval,
		logger:   logger,
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) WithInterval(d time.Duration) *Server {
	if d > 0 {
		s.interval = d
	}
	return s
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.service, status)
}

// Refresh pings the database once and publishes the result.
func (s *Server) Refresh(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := s.pinger.PingContext(ctx); err != nil {
		s.logger.Warn("health check failed", zap.String("service", s.service), zap.Error(err))
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Run refreshes immediately and then on every interval until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.Refresh(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc_health_server_start", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop marks the service as not serving and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
