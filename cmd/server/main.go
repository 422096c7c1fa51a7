package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "garment-rental-backend/internal/api/http"
	"garment-rental-backend/internal/config"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/realtime"
	"garment-rental-backend/internal/realtime/bus"
	"garment-rental-backend/internal/repository/postgres"
	"garment-rental-backend/internal/security"
	"garment-rental-backend/internal/service"
	"garment-rental-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	seedAdmin := flag.Bool("seed-admin", false, "Create the admin account from admin.* config (or ADMIN_EMAIL/ADMIN_PASSWORD) and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Garment Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxOpenConns / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db, postgres.Options{
		TxTimeout:   cfg.TxTimeout(),
		LockTimeout: cfg.LockTimeout(),
	})

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	authSvc := service.NewAuthService(store.Users, tokenManager)

	if *seedAdmin {
		runSeedAdmin(authSvc, cfg.Admin)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Change signals: local SSE hub, optionally fanned out through redis
	hub := realtime.NewHub()
	if cfg.Redis.Addr != "" {
		changeBus, err := bus.NewRedisBus(cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer changeBus.Close()
		hub.SetPublisher(changeBus)
		if err := changeBus.StartForwarder(ctx, hub.HandleRemote); err != nil {
			logger.Error("Failed to subscribe to change bus", "error", err)
			log.Fatalf("Failed to subscribe to change bus: %v", err)
		}
		logger.Info("Change bus enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	} else {
		logger.Info("Change bus disabled, signals stay in-process")
	}

	// Initialize Storage Service
	logger.Info("Using local media store", "upload_dir", cfg.Storage.UploadDir)
	mediaStore, err := storage.NewLocalMediaStore(storage.Config{
		UploadDir:    cfg.Storage.UploadDir,
		BaseURL:      cfg.Storage.BaseURL,
		MaxFileSize:  cfg.Storage.MaxFileSize << 20,
		AllowedTypes: cfg.Storage.AllowedTypes,
	})
	if err != nil {
		logger.Error("Failed to initialize media store", "error", err)
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// Initialize Services
	coordinator := service.NewLifecycleCoordinator(store, hub,
		service.WithRetryPolicy(uint(cfg.Database.MaxRetries), nil),
	)
	inventorySvc := service.NewInventoryService(store.Items, store.Contracts)
	contractSvc := service.NewContractService(store.Contracts)
	statsSvc := service.NewStatsService(store.Stats, cfg.DueSoonWindow())

	router := httpapi.NewRouter(httpapi.Services{
		Coordinator: coordinator,
		Inventory:   inventorySvc,
		Contracts:   contractSvc,
		Stats:       statsSvc,
		Auth:        authSvc,
		Tokens:      tokenManager,
		Media:       mediaStore,
		Events:      hub,
		DB:          store,
	}, httpapi.RouterConfig{
		UploadDir:    mediaStore.Dir(),
		UploadURL:    mediaStore.BaseURL(),
		MaxFileBytes: cfg.Storage.MaxFileSize << 20,
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Get().Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

// runSeedAdmin creates the admin account if it does not exist yet
func runSeedAdmin(authSvc service.AuthService, admin config.AdminConfig) {
	if admin.Email == "" || admin.Password == "" {
		log.Fatalf("admin email and password are required (admin.email/admin.password or ADMIN_EMAIL/ADMIN_PASSWORD)")
	}
	name := admin.Name
	if name == "" {
		name = "Administrator"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, created, err := authSvc.SeedAdmin(ctx, admin.Email, name, admin.Password)
	if err != nil {
		logger.Error("Failed to seed admin", "error", err)
		log.Fatalf("Failed to seed admin: %v", err)
	}
	if created {
		logger.Info("Admin account created", "email", user.Email, "user_id", user.ID)
	} else {
		logger.Info("Admin account already exists", "email", user.Email, "user_id", user.ID)
	}
}
