package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"pixcharge/internal/app"
	"pixcharge/internal/config"
	"pixcharge/internal/handler"
	"pixcharge/internal/mercadopago"
	internalRedis "pixcharge/internal/redis"
	"pixcharge/internal/repository"
	"pixcharge/internal/repository/memory"
	"pixcharge/internal/repository/postgres"
	"pixcharge/internal/service"
)

func main() {
	// Load and validate configuration. A missing gateway token is fatal
	// unless sandbox mode is explicitly enabled.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Select the payment store backend.
	var repo repository.PaymentRepository
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := app.NewDatabase(ctx, cfg.Store.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to PostgreSQL")
		repo = postgres.NewPaymentRepository(db)
	default:
		log.Println("Using in-memory payment store (records do not survive restarts)")
		repo = memory.NewPaymentRepository()
	}

	// Initialize Redis if enabled: status cache, webhook locks, idempotency.
	var redisClient *redis.Client
	var statusCache internalRedis.StatusCacheInterface
	var lockStore internalRedis.LockStoreInterface
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
		statusCache = internalRedis.NewStatusCache(redisClient)
		lockStore = internalRedis.NewLockStore(redisClient)
	}

	// Charge gateway client.
	var gateway service.Gateway
	if cfg.Gateway.AccessToken == "" {
		log.Println("Gateway sandbox mode: charges are simulated")
		gateway = service.NewSandboxGateway()
	} else {
		gateway = mercadopago.NewClient(cfg.Gateway)
	}

	// Wire dependencies.
	paymentService := service.NewPaymentService(repo, gateway, statusCache, lockStore, cfg.Payment.ExpirationWindow)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	router := app.NewRouter(app.RouterDeps{
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		StaticDir:      cfg.Server.StaticDir,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
