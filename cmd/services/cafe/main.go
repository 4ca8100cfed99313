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
	"kasir-system/internal/redisstore"
	"kasir-system/internal/server"
	cafehandler "kasir-system/internal/services/cafe/handler"
	cafeservice "kasir-system/internal/services/cafe/service"
	cafestore "kasir-system/internal/services/cafe/store"
	userhandler "kasir-system/internal/services/user/handler"
	userservice "kasir-system/internal/services/user/service"
	userstore "kasir-system/internal/services/user/store"
	"kasir-system/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig("cafe")

	logger := logging.MustNewLogger(cfg.Service, cfg.Env)
	zap.ReplaceGlobals(logger)
	middleware.InitPropagation()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("cafe service stopped", zap.Error(err))
	}
	_ = logger.Sync()
}

// run wires and serves the cafe service until SIGINT/SIGTERM. Every
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

	if err := database.MigrateCafeDB(db); err != nil {
		return fmt.Errorf("migrate cafe database: %w", err)
	}
	if cfg.Seed {
		if err := database.SeedCafe(ctx, db); err != nil {
			return fmt.Errorf("seed cafe database: %w", err)
		}
	}

	redisClient, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New("cafe", reg)

	cafeSvc := cafeservice.NewService(
		cafestore.NewGormStore(db),
		redisstore.NewCache(redisClient, "cafe", redisstore.CACHE_TTL_SHORT),
		redisstore.NewPublisher(redisClient, "cafe"),
		m,
	)

	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, "cafe")
	tokens := redisstore.NewTokenStore(redisClient, "cafe")
	userSvc := userservice.NewService(userstore.NewGormStore(db), issuer, tokens, models.CafeRoles).
		WithCafeLookup(cafeSvc.CafeExists)

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
	cafehandler.NewCafeHTTPHandler(cafeSvc).RegisterRoutes(protected)

	health := healthcheck.NewServer("cafe", sqlDB, logger)
	srv := server.NewHTTPServer(cfg.HTTP, r)
	return server.Run(ctx, logger, srv, health, ":"+cfg.GRPC.Port)
}
