package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/fernlea/loanledger/internal/adapter/http"
	"github.com/fernlea/loanledger/internal/adapter/http/handler"
	"github.com/fernlea/loanledger/internal/adapter/http/middleware"
	postgresRepo "github.com/fernlea/loanledger/internal/adapter/repository/postgres"
	redisRepo "github.com/fernlea/loanledger/internal/adapter/repository/redis"
	"github.com/fernlea/loanledger/internal/infrastructure/config"
	"github.com/fernlea/loanledger/internal/infrastructure/eventpublisher"
	"github.com/fernlea/loanledger/internal/infrastructure/logger"
	"github.com/fernlea/loanledger/internal/infrastructure/metrics"
	"github.com/fernlea/loanledger/internal/infrastructure/postgres"
	"github.com/fernlea/loanledger/internal/infrastructure/redis"
	"github.com/fernlea/loanledger/internal/infrastructure/scheduler"
	"github.com/fernlea/loanledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	rewardRepo := postgresRepo.NewRewardRepository(pool)
	accrualRepo := postgresRepo.NewAccrualRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	appMetrics := metrics.New()

	// Use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, entryRepo, outboxRepo, idGen, cache)
	rewardUC := usecase.NewRewardUseCase(accountRepo, rewardRepo, outboxRepo, idGen, cfg.RewardFreezeAtMinAPR)
	postingUC := usecase.NewPostingUseCase(txManager, accountRepo, entryRepo, rewardUC, outboxRepo, idGen, retrier, cache, appMetrics)
	accrualUC := usecase.NewAccrualUseCase(txManager, accountRepo, entryRepo, accrualRepo, outboxRepo, idGen, retrier, log, appMetrics)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	entryHandler := handler.NewEntryHandler(postingUC)
	rewardHandler := handler.NewRewardHandler(rewardUC)
	accrualHandler := handler.NewAccrualHandler(accrualUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		EntryHandler:     entryHandler,
		RewardHandler:    rewardHandler,
		AccrualHandler:   accrualHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           log,
	}
	if cfg.RateLimitEnabled {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	router := httpAdapter.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	// Outbox publisher worker
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Accrual scheduler
	var sched *scheduler.Scheduler
	if cfg.AccrualEnabled {
		sched, err = scheduler.New(scheduler.Config{
			Accrual:  accrualUC,
			CronSpec: cfg.AccrualCron,
			Timezone: cfg.AccrualTimezone,
			Logger:   log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create accrual scheduler")
		}
		sched.Start()
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown interrupted")
		}
	}
	cancelWorkers()

	log.Info().Msg("server stopped")
}
