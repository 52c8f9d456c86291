package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/lock"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
	"github.com/mamadbah2/herdbook/internal/repository/mongodb"
	"github.com/mamadbah2/herdbook/internal/repository/postgres"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
	"github.com/mamadbah2/herdbook/internal/repository/sqlite"
	"github.com/mamadbah2/herdbook/internal/scheduler"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/server/router"
	commandsvc "github.com/mamadbah2/herdbook/internal/service/commands"
	"github.com/mamadbah2/herdbook/internal/service/ledger"
	reportingsvc "github.com/mamadbah2/herdbook/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/herdbook/internal/service/whatsapp"
	"github.com/mamadbah2/herdbook/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
	"github.com/mamadbah2/herdbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store, baseLogger.Named("repo.store"))
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	m := metrics.New()
	locker := openLocker(ctx, cfg.Redis, baseLogger.Named("lock"))

	ledgerSvc := ledger.NewService(store, baseLogger.Named("svc.ledger"), ledger.WithLocker(locker), ledger.WithMetrics(m))
	reportingSvc := reportingsvc.NewService(store, baseLogger.Named("svc.reporting"))

	deps := router.Dependencies{
		API:     handlers.NewAPIHandler(ledgerSvc, reportingSvc, baseLogger.Named("handlers.api")),
		Metrics: m,
		Logger:  baseLogger.Named("router"),
	}
	var sinks scheduler.Sinks

	if cfg.WhatsApp.Enabled() {
		var translator whatsappsvc.Translator
		if cfg.AI.AnthropicKey != "" {
			translator = anthropic.NewClient(cfg.AI.AnthropicKey)
			baseLogger.Info("anthropic ai client enabled")
		} else {
			baseLogger.Warn("anthropic api key missing, natural language processing disabled")
		}

		sessions := whatsappsvc.NewSessionManager(whatsappsvc.DefaultConfirmationTTL)
		commandDispatcher := commandsvc.NewService(ledgerSvc, reportingSvc, sessions, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, translator, commandDispatcher, baseLogger.Named("svc.whatsapp"))

		deps.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		sinks.Notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp credentials missing, chat bot and report delivery disabled")
	}

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks.Store = mongoRepo
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sinks.Sheet = sheetsRepo
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, sinks, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.New(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (repository.Repository, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using the in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	case config.DriverSQLite:
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// openLocker prefers the Redis lock and falls back to the in-process one when Redis
// is not configured or unreachable at startup.
func openLocker(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) lock.Locker {
	if cfg.Address == "" {
		return lock.NewLocal()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := lock.Connect(pingCtx, cfg.Address)
	if err != nil {
		log.Warn("redis unavailable, using in-process user locks", zap.Error(err))
		return lock.NewLocal()
	}
	log.Info("redis user locks enabled", zap.String("address", cfg.Address))
	return lock.NewRedis(client, log)
}
