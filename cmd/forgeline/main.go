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
	"github.com/redis/go-redis/v9"

	"github.com/forgeline-erp/forgeline-erp/internal/app"
	"github.com/forgeline-erp/forgeline-erp/internal/fx"
	"github.com/forgeline-erp/forgeline-erp/internal/masterdata"
	"github.com/forgeline-erp/forgeline-erp/internal/orders"
	"github.com/forgeline-erp/forgeline-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := app.NewPool(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	fxRepo := fx.NewRepository(dbpool)
	fxCache := fx.NewCache(redisClient, cfg.FXRateTTL)
	converter := fx.NewConverter(fxRepo, fxCache, logger)

	masterRepo := masterdata.NewRepository(dbpool)
	masterService := masterdata.NewService(masterRepo)
	masterHandler := masterdata.NewHandler(logger, masterService)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	ordersRepo := orders.NewRepository(dbpool)
	numbers := orders.NewNumberIssuer(ordersRepo, cfg.OrderNumberPrefix)
	ordersService := orders.NewService(logger, ordersRepo, masterService, converter, numbers, jobsClient, cfg.SettlementCurrency)
	ordersHandler := orders.NewHandler(logger, ordersService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		OrdersHandler:     ordersHandler,
		MasterDataHandler: masterHandler,
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
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
