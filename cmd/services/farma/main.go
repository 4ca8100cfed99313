package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kasir-system/config"
	"kasir-system/internal/database"
	"kasir-system/internal/database/models"
	"kasir-system/internal/healthcheck"
	"kasir-system/internal/metrics"
	"kasir-system/internal/middleware"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/pricing"
	"kasir-system/internal/redisstore"
	"kasir-system/internal/server"
	farmahandler "kasir-system/internal/services/farma/handler"
	farmaservice "kasir-system/internal/services/farma/service"
	farmastore "kasir-system/internal/services/farma/store"
	userhandler "kasir-system/internal/services/user/handler"
	userservice "kasir-system/internal/services/user/service"
	userstore "kasir-system/internal/services/user/store"
	"kasir-system/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig("farma")

	logger := logging.MustNewLogger(cfg.Service, cfg.Env)
	zap.ReplaceGlobals(logger)
	middleware.InitPropagation()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("farma service stopped", zap.Error(err))
	}
	_ = logger.Sync()
}

// run wires and serves the farma service until SIGINT/SIGTERM. Every
// resource it opens is released before it returns.
func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if err := database.MigrateFarmaDB(db); err != nil {
		return fmt.Errorf("migrate farma database: %w", err)
	}
	if cfg.Seed {
		if err := database.SeedFarma(ctx, db); err != nil {
			return fmt.Errorf("seed farma database: %w", err)
		}
	}

	redisClient, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New("farma", reg)

	farmaSvc := farmaservice.NewService(farmastore.NewGormStore(db), farmaservice.Options{
		Cache:     redisstore.NewCache(redisClient, "farma", redisstore.CACHE_TTL_SHORT),
		Publisher: redisstore.NewPublisher(redisClient, "farma"),
		Metrics:   m,
		Markup:    pricing.NewMarkup(cfg.Pricing),
		Reports:   cfg.Reports,
	})

	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, "farma")
	tokens := redisstore.NewTokenStore(redisClient, "farma")
	userSvc := userservice.NewService(userstore.NewGormStore(db), issuer, tokens, models.FarmaRoles)

	loginLimit, err := middleware.RateLimit(cfg.RateLimit.Login)
	if err != nil {
		return fmt.Errorf("login rate limit: %w", err)
	}

	r := server.NewEngine(cfg, logger, m, sqlDB)
	public := r.Group("/api/v1")
	protected := r.Group("/api/v1", middleware.JWTAuth(issuer, tokens))

	users := userhandler.NewUserHTTPHandler(userSvc)
	users.RegisterAuthRoutes(public, protected, loginLimit)
	users.RegisterUserRoutes(protected.Group("", middleware.RequireRoles(models.RoleSuperadmin)))
	farmahandler.NewFarmaHTTPHandler(farmaSvc).RegisterRoutes(protected)

	health := healthcheck.NewServer("farma", sqlDB, logger)
	srv := server.NewHTTPServer(cfg.HTTP, r)
	return server.Run(ctx, logger, srv, health, ":"+cfg.GRPC.Port)
}
