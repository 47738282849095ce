package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tuckshop/backend/docs"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/config"
	"github.com/tuckshop/backend/internal/database"
	"github.com/tuckshop/backend/internal/events"
	"github.com/tuckshop/backend/internal/handlers"
	"github.com/tuckshop/backend/internal/logging"
	mW "github.com/tuckshop/backend/internal/middleware"
	"github.com/tuckshop/backend/internal/services"
	"github.com/tuckshop/backend/internal/store"
	"go.uber.org/zap"
)

// @title Tuckshop Backend API
// @version 1.0
// @description School tuckshop ledger: accounts, menu items and balance transactions
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWT.SecretKey == "" {
		logger.Fatal("JWT_SECRET_KEY must be set")
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	ctx := context.Background()

	db, err := database.InitDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Name, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient := database.InitRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
		logger.Info("publishing transaction events",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	// Stores
	accountStore := store.NewAccountStore(db)
	ledgerStore := store.NewLedgerStore(db)
	itemStore := store.NewItemStore(db)
	schoolStore := store.NewSchoolStore(db)

	// Services
	hasher := auth.NewPasswordHasher(cfg.Argon2)
	tokens := auth.NewTokenManager(cfg.JWT)
	audit := services.NewAuditLogger(logger)
	engine := services.NewEngine(store.NewUnitOfWork(db), publisher, audit, logger)
	queryService := services.NewQueryService(accountStore, ledgerStore, itemStore, schoolStore)
	accountService := services.NewAccountService(accountStore, schoolStore, hasher, engine, audit, logger)
	authService := services.NewAuthService(accountStore, accountService, hasher, tokens, auth.NewRedisBlacklist(redisClient), logger)

	if err := authService.BootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           authService,
		Accounts:       accountService,
		Badges:         services.NewBadgeService(),
		Queries:        queryService,
		Transactions:   services.NewTransactionService(engine, accountStore, ledgerStore, queryService),
		Items:          services.NewItemService(itemStore, schoolStore, audit),
		Schools:        services.NewSchoolService(schoolStore, audit),
		Health:         handlers.NewHealthHandler(db, redisClient),
		AuthLimiter:    mW.NewRateLimiter(redisClient, "auth", cfg.RateLimit.AuthMax, cfg.RateLimit.Window, logger),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ItemImagesDir:  cfg.Static.ItemImagesDir,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
