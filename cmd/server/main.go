package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaudit "github.com/finledger/backend/internal/application/audit"
	appledger "github.com/finledger/backend/internal/application/ledger"
	appworkspace "github.com/finledger/backend/internal/application/workspace"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/cache"
	"github.com/finledger/backend/internal/infrastructure/config"
	"github.com/finledger/backend/internal/infrastructure/event"
	"github.com/finledger/backend/internal/infrastructure/logger"
	"github.com/finledger/backend/internal/infrastructure/persistence"
	"github.com/finledger/backend/internal/interfaces/http/handler"
	"github.com/finledger/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting finledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	// Event pipeline. Events staged during a unit of work reach the bus
	// only after the transaction commits.
	bus := event.NewAsyncEventBus(log, event.NewRetryExecutor(cfg.Event.MaxAttempts, log), event.Config{
		Workers:   cfg.Event.Workers,
		QueueSize: cfg.Event.QueueSize,
	})
	if err := bus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Event.RequireRedis),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	txm := persistence.NewTxManager(db.DB, bus, log)

	workspaceRepo := persistence.NewGormWorkspaceRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	auditRepo := persistence.NewGormAuditRecordRepository(db.DB)

	// The audit recorder's writes are idempotent on record ID, so it needs
	// no dedupe wrapper. The reaper's delete is idempotent too, but wrapping
	// it skips pointless re-executions of its membership count query.
	idempotencyCfg := shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: cfg.Event.IdempotencyEnabled,
	}
	bus.Subscribe(appaudit.NewRecorder(auditRepo, log))
	bus.Subscribe(event.NewIdempotentHandler(
		appworkspace.NewReaper(workspaceRepo, memberRepo, txm, log),
		idempotencyStore,
		idempotencyCfg,
		log,
	))

	memberService := appworkspace.NewMemberService(workspaceRepo, memberRepo, txm, bus, log)
	accountService := appledger.NewAccountService(accountRepo, memberRepo, txm, bus, log)
	categoryService := appledger.NewCategoryService(categoryRepo, transactionRepo, memberRepo, txm)
	transactionService := appledger.NewTransactionService(transactionRepo, accountRepo, categoryRepo, memberRepo, txm, bus, log)
	historyService := appaudit.NewHistoryService(auditRepo, memberRepo)

	engine := router.New(log, &cfg.HTTP, router.Handlers{
		Health:       handler.NewHealthHandler(),
		Workspaces:   handler.NewWorkspaceHandler(memberService),
		Accounts:     handler.NewAccountHandler(accountService),
		Categories:   handler.NewCategoryHandler(categoryService),
		Transactions: handler.NewTransactionHandler(transactionService),
		History:      handler.NewHistoryHandler(historyService),
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// Drain in-flight events after the HTTP surface stops accepting work,
	// so side effects of already-committed requests still land.
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
