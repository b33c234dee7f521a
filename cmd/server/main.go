package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/casarossa/casarossa-backend/config"
	"github.com/casarossa/casarossa-backend/internal/app/controller"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/app/service"
	"github.com/casarossa/casarossa-backend/internal/db"
	"github.com/casarossa/casarossa-backend/internal/feed"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	"github.com/casarossa/casarossa-backend/internal/router"
	"github.com/casarossa/casarossa-backend/internal/scheduler"
	"github.com/casarossa/casarossa-backend/internal/storage"
	"github.com/casarossa/casarossa-backend/internal/store"
	ws "github.com/casarossa/casarossa-backend/internal/websocket"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"github.com/casarossa/casarossa-backend/pkg/payment/stripe"
	"github.com/casarossa/casarossa-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Casa Rossa Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the revoked-token blacklist; without it sign-out
	// only works client-side.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	paymentClient, err := stripe.NewClient(stripe.Config{
		SecretKey: cfg.Payment.Stripe.SecretKey,
		BaseURL:   cfg.Payment.Stripe.BaseURL,
		Currency:  cfg.Payment.Stripe.Currency,
	})
	if err != nil {
		logger.Fatal("Failed to initialize payment client", err)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Feed bus carries session and catalog change events in-process.
	bus := feed.NewBus()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	adminRepo := repository.NewAdminRepository(db.GetDB())
	menuRepo := repository.NewMenuRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Cart stores, one per signed-in session
	stores := store.NewManager(cartRepo, adminRepo, bus, cfg.Admin.Email)
	defer stores.Close()

	// Services
	authService := service.NewAuthService(
		userRepo,
		adminRepo,
		bus,
		cfg.Admin.Email,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	menuService := service.NewMenuService(menuRepo, bus)
	checkoutService := service.NewCheckoutService(stores, orderRepo, paymentClient, cfg.Payment.Stripe.Currency)

	// Live featured-menu feed
	hub := ws.NewHub(menuService)
	hub.Start(bus)
	defer hub.Stop()

	// Nightly cleanup of abandoned checkouts
	cleanup := scheduler.NewCleanupScheduler(orderRepo)
	if err := cleanup.Start(); err != nil {
		logger.Warn("Cleanup scheduler not running", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cleanup.Stop()

	// Controllers
	authController := controller.NewAuthController(authService, stores)
	menuController := controller.NewMenuController(menuService)
	cartController := controller.NewCartController(stores)
	checkoutController := controller.NewCheckoutController(checkoutService)
	uploadController := controller.NewUploadController(s3Storage)
	feedController := controller.NewFeedController(hub, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, authService)

	r := router.NewRouter(
		authController,
		menuController,
		cartController,
		checkoutController,
		uploadController,
		feedController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
