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

	"github.com/ledgerdesk/ledgerdesk/internal/accounting/accounts"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/groups"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/ledger"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/reports"
	"github.com/ledgerdesk/ledgerdesk/internal/accounting/vouchers"
	"github.com/ledgerdesk/ledgerdesk/internal/app"
	"github.com/ledgerdesk/ledgerdesk/internal/auth"
	"github.com/ledgerdesk/ledgerdesk/internal/masterdata/brands"
	"github.com/ledgerdesk/ledgerdesk/internal/masterdata/categories"
	"github.com/ledgerdesk/ledgerdesk/internal/observability"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/cache"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/db"
	"github.com/ledgerdesk/ledgerdesk/internal/users"
	"github.com/ledgerdesk/ledgerdesk/jobs"
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

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	categoriesRepo := categories.NewRepository(dbpool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	brandsRepo := brands.NewRepository(dbpool)
	brandsService := brands.NewService(brandsRepo)
	brandsHandler := brands.NewHandler(logger, brandsService)

	treeCache := reports.NewCache(redisClient, cfg.HierarchyCacheTTL)

	groupsRepo := groups.NewRepository(dbpool)
	groupsService := groups.NewService(groupsRepo, treeCache)
	groupsHandler := groups.NewHandler(logger, groupsService)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo, groupsRepo, treeCache)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, metrics)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	vouchersRepo := vouchers.NewRepository(dbpool)
	vouchersService := vouchers.NewService(vouchersRepo, metrics)
	vouchersHandler := vouchers.NewHandler(logger, vouchersService)

	reportsService := reports.NewService(logger, groupsRepo, accountsRepo, treeCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	if _, err := jobsClient.EnqueueHierarchyWarmup(ctx); err != nil {
		logger.Warn("enqueue hierarchy warmup", slog.Any("error", err))
	}

	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Tokens:            tokens,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		CategoriesHandler: categoriesHandler,
		BrandsHandler:     brandsHandler,
		GroupsHandler:     groupsHandler,
		AccountsHandler:   accountsHandler,
		VouchersHandler:   vouchersHandler,
		LedgerHandler:     ledgerHandler,
		ReportsHandler:    reportsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
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
