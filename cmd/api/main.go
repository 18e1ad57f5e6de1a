package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toolforge-rest-api/internal/cache"
	"toolforge-rest-api/internal/config"
	"toolforge-rest-api/internal/handler"
	"toolforge-rest-api/internal/middleware"
	"toolforge-rest-api/internal/payment"
	"toolforge-rest-api/internal/repository"
	"toolforge-rest-api/internal/router"
	"toolforge-rest-api/internal/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()
	if cfg.App.IsDevelopment() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	log.Println("Starting Toolforge API...")
	log.Printf("Environment: %s", cfg.App.Environment)

	if cfg.App.IsProduction() && cfg.Auth.AccessTokenSecret == "dev-only-secret" {
		log.Fatal("ACCESS_TOKEN_SECRET must be set in production")
	}

	// Initialize document store based on config
	var store repository.DocumentStore
	switch cfg.Store.Type {
	case "mongodb", "mongo":
		mongoStore, err := repository.NewMongoDBDocumentStore(cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		store = mongoStore
		log.Println("MongoDB document store initialized")
	case "mysql":
		sqlStore, err := repository.NewSQLDocumentStore("mysql", cfg.Store.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		store = sqlStore
		log.Println("MySQL document store initialized")
	case "memory":
		store = repository.NewMemoryDocumentStore()
		log.Println("In-memory document store initialized")
	default: // sqlite
		sqlStore, err := repository.NewSQLDocumentStore("sqlite", cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		store = sqlStore
		log.Println("SQLite document store initialized")
	}
	defer store.Close()

	// Initialize catalog cache
	var catalogCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed, caching disabled: %v", err)
		} else {
			catalogCache = cache.NewRedisCache(redisClient, "")
			log.Println("Redis cache initialized")
		}
	case "none":
		// caching disabled
	default:
		catalogCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}
	if catalogCache != nil {
		defer catalogCache.Close()
	}

	// Initialize services
	tokenService := service.NewTokenService(cfg.Auth.AccessTokenSecret, cfg.Auth.TokenTTL)
	userService := service.NewUserService(store)
	catalogService := service.NewCatalogService(store, catalogCache, cfg.Cache.TTL)
	purchaseService := service.NewPurchaseService(store, catalogService)
	reviewService := service.NewReviewService(store)

	// Initialize payment delegate (optional)
	var paymentHandler *handler.PaymentHandler
	if cfg.Payment.StripeSecretKey != "" {
		delegate := payment.NewStripeDelegate(cfg.Payment.StripeSecretKey, cfg.Payment.Currency)
		paymentHandler = handler.NewPaymentHandler(delegate)
		log.Println("Stripe payment delegate initialized")
	} else {
		log.Println("Warning: STRIPE_SECRET_KEY not set, payment routes disabled")
	}

	// Create router
	r := router.New(router.Config{
		Handler:         handler.New(cfg.App.Name, cfg.App.Version, cfg.Store.Type),
		AuthHandler:     handler.NewAuthHandler(tokenService),
		UserHandler:     handler.NewUserHandler(userService, tokenService),
		CatalogHandler:  handler.NewCatalogHandler(catalogService),
		PurchaseHandler: handler.NewPurchaseHandler(purchaseService),
		ReviewHandler:   handler.NewReviewHandler(reviewService),
		PaymentHandler:  paymentHandler,
		RequireAuth:     middleware.RequireAuth(tokenService),
		RequireAdmin:    middleware.RequireAdmin(userService),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
