package clients

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func startHealthServer(t *testing.T, service string, status healthpb.HealthCheckResponse_ServingStatus) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus(service, status)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}

func TestCheck(t *testing.T) {
	addrs := map[string]string{
		"cafe":  startHealthServer(t, "cafe", healthpb.HealthCheckResponse_SERVING),
		"farma": startHealthServer(t, "farma", healthpb.HealthCheckResponse_NOT_SERVING),
	}
	c, err := NewGRPCClients(addrs, zap.NewNop())
	if err != nil {
		t.Fatalf("new clients: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if got := c.Check(ctx, "cafe"); got.Status != "healthy" {
		t.Fatalf("expected cafe healthy, got %+v", got)
	}
	if got := c.Check(ctx, "farma"); got.Status != "unhealthy" {
		t.Fatalf("expected farma unhealthy, got %+v", got)
	}
	if got := c.Check(ctx, "unknown"); got.Status != "unavailable" {
		t.Fatalf("expected unknown unavailable, got %+v", got)
	}
	if names := c.Services(); len(names) != 2 || names[0] != "cafe" {
		t.Fatalf("unexpected services %v", names)
	}
}
