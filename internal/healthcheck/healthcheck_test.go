package healthcheck

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(context.Context) error { return f.err }

func status(t *testing.T, s *Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	return resp.Status
}

func TestRefreshFlipsStatus(t *testing.T) {
	pinger := &fakePinger{}
	s := NewServer("farma", pinger, zap.NewNop())

	if got := status(t, s, "farma"); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING before first refresh, got %v", got)
	}

	if !s.Refresh(context.Background()) {
		t.Fatalf("expected refresh to succeed")
	}
	if got := status(t, s, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", got)
	}

	pinger.err = errors.New("connection refused")
	if s.Refresh(context.Background()) {
		t.Fatalf("expected refresh to fail")
	}
	if got := status(t, s, "farma"); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING after failed ping, got %v", got)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	s := NewServer("cafe", &fakePinger{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if got := status(t, s, "cafe"); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected initial refresh to mark SERVING, got %v", got)
	}
}
