package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fiberwatch-backend/config"
	"fiberwatch-backend/internal/alerting"
	"fiberwatch-backend/internal/api"
	"fiberwatch-backend/internal/classifier"
	"fiberwatch-backend/internal/db"
	"fiberwatch-backend/internal/ingest"
	"fiberwatch-backend/internal/notification"
	"fiberwatch-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "fiberwatch ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Server.APISecret == "" {
		logger.Fatalf("server.api_secret must be configured; device credentials are derived from it")
	}
	if cfg.Mail.Enabled && (cfg.Mail.Host == "" || cfg.Mail.From == "") {
		logger.Fatalf("mail is enabled but host/from are not configured")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	pool := notification.NewWorkerPool(cfg, appStore)
	pool.Start(ctx)
	logger.Printf("notification worker pool started (size %d, queue %d)", cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)

	cls := classifier.New()
	pipeline := ingest.New(cfg, appStore, cls, alerting.NewGate(cfg.Alerting.Cooldown), pool)

	handler := api.NewHandler(cfg, appStore, pipeline, cls, pool)
	router := api.NewRouter(cfg, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
