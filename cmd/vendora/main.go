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

	"github.com/vendora-shop/vendora/internal/adapters"
	"github.com/vendora-shop/vendora/internal/app"
	"github.com/vendora-shop/vendora/internal/audit"
	"github.com/vendora-shop/vendora/internal/authz"
	"github.com/vendora-shop/vendora/internal/orders"
	"github.com/vendora-shop/vendora/internal/platform/cache"
	"github.com/vendora-shop/vendora/internal/platform/db"
	"github.com/vendora-shop/vendora/internal/stores"
	"github.com/vendora-shop/vendora/internal/users"
	"github.com/vendora-shop/vendora/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo)
	storeRepo := stores.NewRepository(dbpool)
	storeService := stores.NewService(storeRepo)
	orderRepo := orders.NewRepository(dbpool)
	orderService := orders.NewService(orderRepo)
	auditRepo := audit.NewRepository(dbpool)

	roleAdapter := adapters.NewUserRoleAdapter(userService, storeService)
	roleSource := authz.NewCachedUserRoleSource(roleAdapter, redisClient, cfg.RoleCacheTTL, logger)
	adminSource := adapters.NewAdminAdapter(userService)
	storeSource := adapters.NewStoreRoleAdapter(storeService)

	tokens, err := authz.NewTokenValidator(cfg.JWTSecret, roleSource)
	if err != nil {
		logger.Error("token validator", slog.Any("error", err))
		os.Exit(1)
	}

	resolver := authz.NewPolicyResolver()
	chain := authz.NewChain(authz.ChainConfig{
		Tokens:   tokens,
		Users:    roleSource,
		Admins:   adminSource,
		Stores:   storeSource,
		Resolver: resolver,
		Owners:   authz.NewEntityOwnerResolver(logger),
		Logger:   logger,
		Recorder: jobs.NewRecorder(asynqClient),
	})

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Resolver:      resolver,
		Guard:         authz.Middleware{Chain: chain, Logger: logger},
		StoresHandler: stores.NewHandler(logger, storeService, roleSource),
		OrdersHandler: orders.NewHandler(logger, orderService),
		AuditHandler:  audit.NewHandler(logger, auditRepo),
		OrderLookup:   adapters.OrderLookup{Repo: orderRepo},
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
