package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenroute/fulfillment-engine/internal/api"
	"github.com/greenroute/fulfillment-engine/internal/core/service"
	"github.com/greenroute/fulfillment-engine/internal/infrastructure/db/mongo"
	"github.com/greenroute/fulfillment-engine/internal/infrastructure/db/redis"
	"github.com/greenroute/fulfillment-engine/internal/infrastructure/gateway"
	"github.com/greenroute/fulfillment-engine/internal/infrastructure/network"
	"github.com/greenroute/fulfillment-engine/internal/infrastructure/queue"
	"github.com/greenroute/fulfillment-engine/internal/pkg/config"
	"github.com/greenroute/fulfillment-engine/pkg/logger"
)

// @title        Fulfillment Decision Engine API
// @version      1.0
// @description  Multi-criteria warehouse and carrier selection for e-commerce orders.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	orderRepo := mongo.NewOrderRepository(mongoClient, db)
	outboxRepo := mongo.NewOutboxRepository(db)
	userRepo := mongo.NewUserRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"orders": orderRepo.EnsureIndexes,
		"outbox": outboxRepo.EnsureIndexes,
		"users":  userRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Static network topology ---
	topology, err := network.Load(cfg.NetworkPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.NetworkPath).Msg("network config load failed")
	}
	log.Info().
		Int("warehouses", len(topology.Warehouses)).
		Int("carriers", len(topology.Carriers)).
		Msg("network topology loaded")

	// --- Provider gateways ---
	stockClient := gateway.NewStockClient(cfg.Providers.StockURL, cfg.Providers.Timeout)
	quoteClient := gateway.NewQuoteClient(cfg.Providers.QuoteURL, cfg.Providers.Timeout)
	carbonClient := gateway.NewCarbonClient(cfg.Providers.CarbonURL, cfg.Providers.Timeout)

	// --- Core services ---
	orderService := service.NewOrderService(orderRepo, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	generator := service.NewCandidateGenerator(topology)
	publisher := service.NewDecisionPublisher(orderRepo, log)
	optimizer := service.NewOptimizer(
		orderRepo,
		generator,
		stockClient,
		quoteClient,
		carbonClient,
		publisher,
		cfg.Optimizer.Timeout,
		log,
	)

	// --- Outbox relay ---
	relay := queue.NewRelay(
		outboxRepo,
		redis.NewStreamPublisher(rdb, cfg.Outbox.Stream),
		redis.NewPublishMarker(rdb),
		queue.Options{
			Workers:   cfg.Outbox.Workers,
			BatchSize: cfg.Outbox.BatchSize,
			Interval:  cfg.Outbox.RelayInterval,
		},
		log,
	)
	relay.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Orders:    orderService,
		Optimizer: optimizer,
		Auth:      authService,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
