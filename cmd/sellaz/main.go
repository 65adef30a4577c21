package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/juku001/SellazEngine/internal/app"
	"github.com/juku001/SellazEngine/internal/auth"
	"github.com/juku001/SellazEngine/internal/biker"
	"github.com/juku001/SellazEngine/internal/catalog"
	"github.com/juku001/SellazEngine/internal/dealer"
	"github.com/juku001/SellazEngine/internal/observability"
	"github.com/juku001/SellazEngine/internal/platform/cache"
	"github.com/juku001/SellazEngine/internal/platform/db"
	"github.com/juku001/SellazEngine/internal/shared"
	"github.com/juku001/SellazEngine/internal/stock"
	"github.com/juku001/SellazEngine/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokenStore)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Tokens: tokenStore, Logger: logger}

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	stockService := stock.NewService(stock.NewRepository(pool), redisClient)
	stockHandler := stock.NewHandler(logger, stockService)

	dealerService := dealer.NewService(dealer.NewRepository(pool), catalogService, auditLogger, metrics, stockService, cfg.PaymentTermDays, cfg.StockPricePolicy)
	dealerHandler := dealer.NewHandler(logger, dealerService)

	bikerService := biker.NewService(biker.NewRepository(pool), auditLogger, metrics, stockService, cfg.CommissionPercent)
	bikerHandler := biker.NewHandler(logger, bikerService)

	jobsHandler := jobs.NewHandler(asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr}), logger)

	router := app.NewRouter(app.RouterDeps{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		Pool:           pool,
		Redis:          redisClient,
		AuthMiddleware: authMiddleware,
		Auth:           authHandler,
		Catalog:        catalogHandler,
		Dealer:         dealerHandler,
		Stock:          stockHandler,
		Biker:          bikerHandler,
		Jobs:           jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
