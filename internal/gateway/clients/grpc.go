package clients

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type ServiceStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GRPCClients holds one health client per upstream service.
type GRPCClients struct {
	conns   map[string]*grpc.ClientConn
	clients map[string]healthpb.HealthClient
	logger  *zap.Logger
}

// NewGRPCClients creates lazy connections to every address in addrs, keyed
// by service name. grpc.NewClient does not dial, so an unreachable service
// only shows up in health checks.
func NewGRPCClients(addrs map[string]string, logger *zap.Logger) (*GRPCClients, error) {
	if logger == nil {
		logger = zap.L()
	}
	c := &GRPCClients{
		conns:   make(map[string]*grpc.ClientConn, len(addrs)),
		clients: make(map[string]healthpb.HealthClient, len(addrs)),
		logger:  logger,
	}
	for name, addr := range addrs {
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("%s service connection failed: %w", name, err)
		}
		c.conns[name] = conn
		c.clients[name] = healthpb.NewHealthClient(conn)
	}
	logger.Info("grpc health clients ready", zap.Strings("services", c.Services()))
	return c, nil
}

func (c *GRPCClients) Services() []string {
	names := make([]string, 0, len(c.conns))
	for name := range c.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAvailable reports whether the connection for name is not in a failed
// state. It never blocks.
func (c *GRPCClients) IsAvailable(name string) bool {
	conn, ok := c.conns[name]
	if !ok {
		return false
	}
	state := conn.GetState()
	return state != connectivity.TransientFailure && state != connectivity.Shutdown
}

// Check calls grpc.health.v1.Health/Check for the named service.
func (c *GRPCClients) Check(ctx context.Context, name string) ServiceStatus {
	client, ok := c.clients[name]
	if !ok {
		return ServiceStatus{Status: "unavailable", Message: "Service client not initialized"}
	}
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
	if err != nil {
		return ServiceStatus{Status: "unavailable", Message: err.Error()}
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return ServiceStatus{Status: "unhealthy", Message: resp.Status.String()}
	}
	return ServiceStatus{Status: "healthy", Message: "Service is responding"}
}

func (c *GRPCClients) Close() {
	for name, conn := range c.conns {
		if err := conn.Close(); err != nil {
			c.logger.Warn("failed to close grpc connection", zap.String("service", name), zap.Error(err))
		}
	}
}
