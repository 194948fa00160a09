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

	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/controller"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	"github.com/mithaqq/mithaqq-backend/internal/cache"
	"github.com/mithaqq/mithaqq-backend/internal/db"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
	"github.com/mithaqq/mithaqq-backend/internal/router"
	"github.com/mithaqq/mithaqq-backend/internal/scheduler"
	"github.com/mithaqq/mithaqq-backend/internal/storage"
	"github.com/mithaqq/mithaqq-backend/internal/websocket"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/payment"
	"github.com/mithaqq/mithaqq-backend/pkg/payment/paypal"
	"github.com/mithaqq/mithaqq-backend/pkg/payment/stripe"
	pkgredis "github.com/mithaqq/mithaqq-backend/pkg/redis"
	"github.com/mithaqq/mithaqq-backend/pkg/video"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting MITHAQQ Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
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

	// Seed reference data (categories, shipping zones, bootstrap admin)
	if err := db.Seed(cfg.Admin); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	database := db.GetDB()

	// Redis backs token revocation and the read caches. Both degrade when it is off.
	var (
		revoker     service.TokenRevoker
		revocations middleware.TokenRevocations
		appCache    cache.Cache = cache.NoopCache{}
	)
	if cfg.Redis.Enabled {
		client, err := pkgredis.Init(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache and token revocation", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer pkgredis.Close()
			blacklist := pkgredis.NewTokenBlacklist(client)
			revoker = blacklist
			revocations = blacklist
			appCache = cache.NewRedisCache(client, "mithaqq")
		}
	}

	pricing, err := service.NewPricingCalculator(cfg.Pricing)
	if err != nil {
		logger.Fatal("Invalid pricing configuration", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	courseRepo := repository.NewCourseRepository(database)
	packageRepo := repository.NewTravelPackageRepository(database)
	catalogRepo := repository.NewCatalogRepository(database)
	cartRepo := repository.NewCartRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	zoneRepo := repository.NewShippingZoneRepository(database)
	reviewRepo := repository.NewReviewRepository(database)
	favoriteRepo := repository.NewFavoriteRepository(database)
	marketerRepo := repository.NewMarketerRepository(database)
	reportRepo := repository.NewReportRepository(database)

	// Services
	items := service.NewItemResolver(productRepo, courseRepo, packageRepo)
	zoneService := service.NewShippingZoneService(zoneRepo, appCache)
	authService := service.NewAuthService(
		userRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	courseService := service.NewCourseService(courseRepo, orderRepo, video.BunnySigner{
		PullZone:    cfg.Video.BunnyPullZone,
		SecurityKey: cfg.Video.BunnySecurityKey,
		TTL:         cfg.Video.TokenTTL,
	})
	packageService := service.NewTravelPackageService(packageRepo)
	contentService := service.NewContentService(catalogRepo)
	userAdminService := service.NewUserAdminService(userRepo, catalogRepo)
	cartService := service.NewCartService(cartRepo, items, pricing)
	orderService := service.NewOrderService(orderRepo, cartRepo, courseRepo, userRepo, zoneService, pricing, database)
	checkoutService := service.NewCheckoutService(
		cartRepo,
		courseRepo,
		items,
		zoneService,
		orderService,
		pricing,
		newPayPalGateway(cfg.Payment.PayPal),
		newStripeGateway(cfg.Payment.Stripe),
		cfg.Server.Domain,
	)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, userRepo, items, database)
	favoriteService := service.NewFavoriteService(favoriteRepo, items)
	marketerService := service.NewMarketerService(userRepo, marketerRepo, productRepo, cfg.Marketer)
	reportService := service.NewReportService(reportRepo, orderRepo, userRepo, appCache)

	// Admin order feed
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub()
	go hub.Run(ctx)
	orderService.SetNotifier(hub)

	var presigner storage.Presigner
	if cfg.S3.Bucket != "" {
		presigner = storage.NewS3Storage(ctx, cfg.S3)
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocations)

	r := router.NewRouter(router.Controllers{
		Auth:         controller.NewAuthController(authService),
		Catalog:      controller.NewCatalogController(productService, courseService, packageService, contentService),
		Cart:         controller.NewCartController(cartService),
		Checkout:     controller.NewCheckoutController(checkoutService),
		Order:        controller.NewOrderController(orderService),
		Review:       controller.NewReviewController(reviewService),
		Favorite:     controller.NewFavoriteController(favoriteService),
		Marketer:     controller.NewMarketerController(marketerService),
		Admin:        controller.NewAdminController(authService, reportService, orderService, zoneService),
		AdminCatalog: controller.NewAdminCatalogController(authService, productService, courseService, packageService, contentService),
		AdminUsers:   controller.NewAdminUserController(authService, userAdminService),
		Upload:       controller.NewUploadController(presigner),
		OrderFeed:    controller.NewOrderFeedController(hub, cfg.CORS.AllowedOrigins),
	}, authMiddleware, cfg)
	engine := r.Setup()

	if cfg.Scheduler.Enabled {
		maintenance := scheduler.NewMaintenanceScheduler(reviewService, cartRepo, cfg.Scheduler.AbandonedCartAfter)
		if err := maintenance.Start(); err != nil {
			logger.Fatal("Failed to start maintenance scheduler", err)
		}
		defer maintenance.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

// newPayPalGateway falls back to a disabled gateway when credentials are missing.
func newPayPalGateway(cfg config.PayPalConfig) payment.Gateway {
	client, err := paypal.NewClient(paypal.Config{
		ClientID: cfg.ClientID,
		Secret:   cfg.Secret,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		logger.Warn("PayPal disabled", map[string]interface{}{"error": err.Error()})
		return payment.Disabled("paypal")
	}
	return payment.WithBreaker(paypal.NewGateway(client), payment.DefaultBreakerSettings())
}

func newStripeGateway(cfg config.StripeConfig) payment.Gateway {
	client, err := stripe.NewClient(stripe.Config{
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.BaseURL,
	})
	if err != nil {
		logger.Warn("Stripe disabled", map[string]interface{}{"error": err.Error()})
		return payment.Disabled("stripe")
	}
	return payment.WithBreaker(stripe.NewGateway(client), payment.DefaultBreakerSettings())
}
