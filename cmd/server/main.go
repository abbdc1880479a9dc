package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nftmarket/walletbridge/internal/api"
	"nftmarket/walletbridge/internal/config"
	"nftmarket/walletbridge/internal/database"
	"nftmarket/walletbridge/internal/networks"
	"nftmarket/walletbridge/internal/provider"
	"nftmarket/walletbridge/internal/reconciler"
	"nftmarket/walletbridge/internal/session"
)

func main() {
	// Initialize logger
	logger, err := initLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Wallet Bridge Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("db_host", cfg.Database.Host),
		zap.String("provider_endpoint", cfg.Provider.Endpoint))

	// Build the network registry, with optional operator-supplied
	// extras on top of the built-in table
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build network registry", zap.Error(err))
	}
	logger.Info("Network registry ready",
		zap.Int("networks", len(registry.All())))

	// Connect to the database. A persistence failure must never block
	// the wallet session, so an unreachable database degrades to an
	// in-memory record that will not survive a restart.
	var store database.ConnectionStore
	db, err := database.Connect(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Warn("Database unavailable, using in-memory connection store", zap.Error(err))
		store = database.NewMemoryStore()
	} else {
		defer db.Close()
		logger.Info("Database connected successfully")

		migrationPath := "internal/database/migrations/001_schema.sql"
		if err := database.RunMigrations(db, migrationPath); err != nil {
			logger.Warn("Failed to run migrations (may already be applied)", zap.Error(err))
		} else {
			logger.Info("Database migrations applied successfully")
		}
		store = db
	}

	// Dial the wallet provider bridge. Absence is not fatal either:
	// requests then fail with a no-provider error until one appears.
	var gateway *provider.Gateway
	if cfg.Provider.Endpoint != "" {
		dialCtx, dialCancel := context.WithTimeout(context.Background(), cfg.Provider.RequestTimeout)
		gateway, err = provider.Dial(dialCtx, cfg.Provider.Endpoint, logger)
		dialCancel()
		if err != nil {
			logger.Warn("Wallet provider unreachable", zap.Error(err))
			gateway = nil
		} else {
			defer gateway.Close()
		}
	} else {
		logger.Warn("No wallet provider endpoint configured")
	}

	var wallet session.Wallet
	var detector session.FlavorDetector
	var recProvider reconciler.Provider
	if gateway != nil {
		wallet = gateway
		detector = gateway
		recProvider = gateway
	}

	// Wire the orchestrator and reconciler
	notifier := session.NewLogNotifier(logger)
	orchestrator := session.NewOrchestrator(wallet, detector, store, notifier, cfg.Connect, logger)
	rec := reconciler.NewReconciler(recProvider, registry, cfg.Connect.ChainPollInterval, nil, logger)

	// Initialize API handlers
	apiHandler := api.NewHandler(orchestrator, rec, registry, logger)
	router := api.SetupRouter(apiHandler, logger)

	// Create HTTP server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", serverAddr))
		serverErrors <- httpServer.ListenAndServe()
	}()

	// Start background watchers and the one-shot auto-connect
	watchCtx, watchCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		orchestrator.WatchAccounts(watchCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		rec.Watch(watchCtx)
	}()

	go func() {
		autoCtx, autoCancel := context.WithTimeout(watchCtx, cfg.Provider.RequestTimeout)
		defer autoCancel()
		orchestrator.AutoConnect(autoCtx)
	}()

	logger.Info("Service initialized successfully",
		zap.String("status", "ready"),
		zap.Int("port", cfg.Server.Port))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("HTTP server error", zap.Error(err))
	case sig := <-quit:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	logger.Info("Shutting down service...")

	// Stop watchers first
	watchCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("Watchers stopped gracefully")
	case <-time.After(10 * time.Second):
		logger.Warn("Watcher shutdown timed out")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
		httpServer.Close()
	} else {
		logger.Info("HTTP server stopped gracefully")
	}

	logger.Info("Service stopped successfully")
}

func buildRegistry(cfg *config.Config, logger *zap.Logger) (*networks.Registry, error) {
	if cfg.NetworksFile == "" {
		return networks.NewRegistry()
	}

	extra, err := networks.LoadExtra(cfg.NetworksFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded extra networks",
		zap.String("file", cfg.NetworksFile),
		zap.Int("count", len(extra)))

	return networks.NewRegistry(extra...)
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENV")
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
