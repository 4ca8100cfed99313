package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kasir-system/config"
	"kasir-system/internal/gateway/clients"
	"kasir-system/internal/metrics"
	"kasir-system/internal/middleware"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig("gateway")

	logger := logging.MustNewLogger(cfg.Service, cfg.Env)
	zap.ReplaceGlobals(logger)
	middleware.InitPropagation()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grpcClients, err := clients.NewGRPCClients(map[string]string{
		"cafe":  cfg.Gateway.CafeGRPCAddr,
		"farma": cfg.Gateway.FarmaGRPCAddr,
	}, logger)
	if err != nil {
		return fmt.Errorf("create grpc health clients: %w", err)
	}
	defer grpcClients.Close()

	m := metrics.New("gateway", prometheus.NewRegistry())

	r, err := setupRouter(cfg, logger, m, grpcClients)
	if err != nil {
		return fmt.Errorf("set up routes: %w", err)
	}

	srv := server.NewHTTPServer(cfg.HTTP, r)
	return server.Run(ctx, logger, srv, nil, "")
}
