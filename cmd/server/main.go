package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/vitrine/backend/internal/application/catalog"
	shoppingapp "github.com/vitrine/backend/internal/application/shopping"
	"github.com/vitrine/backend/internal/domain/shopping"
	"github.com/vitrine/backend/internal/infrastructure/config"
	"github.com/vitrine/backend/internal/infrastructure/logger"
	"github.com/vitrine/backend/internal/infrastructure/persistence"
	"github.com/vitrine/backend/internal/infrastructure/scheduler"
	"github.com/vitrine/backend/internal/infrastructure/session"
	"github.com/vitrine/backend/internal/interfaces/http/handler"
	"github.com/vitrine/backend/internal/interfaces/http/middleware"
	"github.com/vitrine/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting Vitrine Storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Resolve the default store used when requests carry no X-Store-ID
	defaultStore := uuid.Nil
	if cfg.Session.DefaultStore != "" {
		defaultStore, err = uuid.Parse(cfg.Session.DefaultStore)
		if err != nil {
			log.Fatal("Invalid session.default_store", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize catalog repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)

	// Optional Redis client, shared by the snapshot store and the
	// catalog invalidator
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Select the session snapshot backend
	var snapshots shopping.SnapshotStore
	switch cfg.Session.Backend {
	case "redis":
		snapshots = session.NewRedisSnapshotStoreWithClient(redisClient,
			session.WithSnapshotTTL(cfg.Session.SnapshotTTL))
	case "gorm":
		store := persistence.NewGormSnapshotStore(db.DB)
		snapshots = store

		// Idle sessions in the database need explicit cleanup. Redis
		// handles this with TTLs, the relational backend with a sweep.
		purger := scheduler.NewPurgeScheduler(scheduler.PurgeConfig{
			Interval: time.Hour,
			MaxIdle:  cfg.Session.SnapshotTTL,
		}, store, log)
		if err := purger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start snapshot purge scheduler", zap.Error(err))
		}
		defer func() {
			if err := purger.Stop(context.Background()); err != nil {
				log.Error("Error stopping snapshot purge scheduler", zap.Error(err))
			}
		}()
		log.Info("Snapshot purge scheduler started",
			zap.Duration("max_idle", cfg.Session.SnapshotTTL))
	default:
		snapshots = session.NewMemorySnapshotStore()
	}
	log.Info("Session snapshot store initialized", zap.String("backend", cfg.Session.Backend))

	// Initialize application services
	cartService := shoppingapp.NewCartService(snapshots, productRepo, log)
	favoritesService := shoppingapp.NewFavoritesService(snapshots, productRepo, log)
	browseService := catalogapp.NewBrowseService(productRepo, categoryRepo, log,
		catalogapp.WithRefreshDelay(cfg.Session.RefreshDelay),
		catalogapp.WithCacheTTL(cfg.Session.CacheTTL))
	defer browseService.Close()

	// Catalog invalidation over Redis Pub/Sub keeps every instance's
	// product cache fresh when an admin tool changes the catalog
	if redisClient != nil {
		invalidator := session.NewRedisCatalogInvalidator(redisClient,
			session.WithInvalidatorLogger(log))
		err := invalidator.Subscribe(context.Background(), func(msg session.CatalogChangedMessage) {
			storeID, err := uuid.Parse(msg.StoreID)
			if err != nil {
				log.Warn("Ignoring catalog change with malformed store ID",
					zap.String("store_id", msg.StoreID))
				return
			}
			browseService.NotifyChanged(storeID)
		})
		if err != nil {
			log.Fatal("Failed to subscribe to catalog changes", zap.Error(err))
		}
		defer func() {
			if err := invalidator.Close(); err != nil {
				log.Error("Error closing catalog invalidator", zap.Error(err))
			}
		}()
		log.Info("Catalog invalidation subscriber started",
			zap.String("channel", session.DefaultCatalogChannel))
	}

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService)
	favoritesHandler := handler.NewFavoritesHandler(favoritesService)
	productHandler := handler.NewProductHandler(browseService)

	readinessChecks := []handler.ReadinessCheck{
		{Name: "database", Check: db.Ping},
	}
	if redisClient != nil {
		readinessChecks = append(readinessChecks, handler.ReadinessCheck{
			Name: "redis",
			Check: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return redisClient.Ping(ctx).Err()
			},
		})
	}
	systemHandler := handler.NewSystemHandler(readinessChecks...)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-Session-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health endpoints (outside API versioning)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Store and session resolution apply to every API route. StoreResolver
	// must run before RateLimit so buckets are scoped per store.
	r.Use(middleware.StoreResolver(cfg.Session.StoreHeader, defaultStore))
	r.Use(middleware.Session(cfg.Session.HeaderName))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Catalog domain (product browsing, categories)
	catalogRoutes := router.NewDomainGroup("catalog", "")
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:slug", productHandler.GetBySlug)
	catalogRoutes.GET("/categories", productHandler.ListCategories)

	// Shopping domain (cart, favorites)
	shoppingRoutes := router.NewDomainGroup("shopping", "")
	shoppingRoutes.GET("/cart", cartHandler.Get)
	shoppingRoutes.POST("/cart/items", cartHandler.AddItem)
	shoppingRoutes.PUT("/cart/items/:product_id", cartHandler.UpdateQuantity)
	shoppingRoutes.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)
	shoppingRoutes.DELETE("/cart", cartHandler.Clear)
	shoppingRoutes.GET("/cart/totals", cartHandler.Totals)
	shoppingRoutes.GET("/favorites", favoritesHandler.Get)
	shoppingRoutes.POST("/favorites/:product_id", favoritesHandler.Toggle)
	shoppingRoutes.DELETE("/favorites/:product_id", favoritesHandler.Remove)
	shoppingRoutes.DELETE("/favorites", favoritesHandler.Clear)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(catalogRoutes).
		Register(shoppingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
