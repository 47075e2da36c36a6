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

	"github.com/gin-gonic/gin"
	addressapp "github.com/storefront/backend/internal/application/address"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/dashboard"
	favoritesapp "github.com/storefront/backend/internal/application/favorites"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/application/media"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/realtime"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Storefront backend: catalog, cart, favorites, checkout, orders and back office.

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The bootstrap logger reports telemetry setup; the service logger also
	// feeds the OpenTelemetry log pipeline.
	bootLog := logger.New(logger.FromAppConfig(cfg.Log))
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	log := logger.New(logger.FromAppConfig(cfg.Log),
		providers.Logs.ZapCore(cfg.Telemetry.ServiceName, zapcore.InfoLevel))
	defer func() { _ = log.Sync() }()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing not installed", zap.Error(err))
	}
	log.Info("Database connected")

	backend, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer func() { _ = backend.Close() }()

	objectStore, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("create object storage: %w", err)
	}
	presigner := media.NewPresigner(objectStore, cfg.Storage.PresignExpiration)

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	userDirectory := persistence.NewGormUserDirectory(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	favoritesRepo := persistence.NewGormFavoritesRepository(db.DB)

	cartStore := cache.NewCartStore(backend.Cache, cfg.Shop.CartTTL)
	localFavorites := cache.NewFavoritesStore(backend.Cache, cfg.Shop.CartTTL)

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if backend.IsRedis() {
		blacklist = auth.NewRedisTokenBlacklist(backend.Client)
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	meter := providers.Meter.Meter("storefront")
	metrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meter,
		Logger:            log,
		Products:          productRepo,
		LowStockThreshold: cfg.Shop.LowStockThreshold,
	})
	if err != nil {
		return fmt.Errorf("register business metrics: %w", err)
	}
	defer metrics.Stop()

	bus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = bus.Stop(stopCtx)
	}()

	// Order events reach admin dashboards on every instance through Redis
	// when it is available, otherwise only this instance's hub.
	hub := realtime.NewHub(cfg.HTTP.CORSAllowOrigins, log)
	defer hub.Close()
	var publisher realtime.Publisher = hub
	if backend.IsRedis() {
		relay := realtime.NewRedisRelay(backend.Client, realtime.DefaultChannel, hub, log)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Realtime relay stopped", zap.Error(err))
			}
		}()
		publisher = relay
	}
	feed := realtime.NewOrderFeed(publisher, log)
	bus.Subscribe(feed, feed.EventTypes()...)

	// Application services
	policy := identity.NewRolePolicy(cfg.Shop.AdminEmails)
	resolver := identityapp.NewSessionResolver(userRepo, profileRepo, backend.Cache, policy,
		identityapp.ResolverConfig{
			TTL:        cfg.Shop.SessionCacheTTL,
			Retries:    cfg.Shop.AuthFetchRetries,
			RetryDelay: cfg.Shop.AuthFetchRetryDelay,
		}, log)

	productService := catalogapp.NewProductService(productRepo, presigner, log)
	cartService := cartapp.NewService(cartStore, productRepo, presigner, metrics, log)
	favoritesService := favoritesapp.NewService(localFavorites, favoritesRepo, productRepo, presigner, log)
	authService := identityapp.NewAuthService(identityapp.AuthDeps{
		Users:     userRepo,
		Profiles:  profileRepo,
		Resolver:  resolver,
		Policy:    policy,
		JWT:       jwtService,
		Blacklist: blacklist,
		Carts:     cartService,
		Favorites: favoritesService,
		URLs:      presigner,
		Metrics:   metrics,
		Logger:    log,
	})
	profileService := identityapp.NewProfileService(userRepo, profileRepo, resolver, presigner, log)
	userAdminService := identityapp.NewUserAdminService(userRepo, profileRepo, userDirectory, resolver, policy, blacklist, jwtService, log)
	addressService := addressapp.NewService(addressRepo, log)
	orderService := orderapp.NewService(
		persistence.NewGormTransactionScope(db.DB),
		orderRepo,
		addressRepo,
		cartService,
		orderapp.Pricing{ShippingFee: cfg.Shop.ShippingFee, FreeShippingThreshold: cfg.Shop.FreeShippingThreshold},
		presigner,
		log,
	)
	orderService.SetEventPublisher(bus)
	orderService.SetMetrics(metrics)
	dashboardService := dashboard.NewService(productRepo, orderRepo, profileRepo, backend.Cache,
		cfg.Shop.DashboardCacheTTL, cfg.Shop.LowStockThreshold, presigner, log)

	// Health checks
	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if backend.IsRedis() {
		checks["redis"] = func(ctx context.Context) error { return backend.Client.Ping(ctx).Err() }
	}

	handlers := router.Handlers{
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks),
		Product:   handler.NewProductHandler(productService),
		Auth:      handler.NewAuthHandler(authService, profileService, cfg.Cookie.GuestName),
		Cart:      handler.NewCartHandler(cartService),
		Favorites: handler.NewFavoritesHandler(favoritesService, cfg.Cookie.GuestName),
		Address:   handler.NewAddressHandler(addressService),
		Order:     handler.NewOrderHandler(orderService, hub),
		User:      handler.NewUserHandler(userAdminService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Server spans, errors marked on the span
	// 5. Metrics - Request counters and latency
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Cap request bodies (cart and checkout get a tighter cap)
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	adminJWTConfig := jwtConfig
	adminJWTConfig.QueryTokenPaths = []string{router.FeedPath}

	guards := router.Guards{
		Owner: []gin.HandlerFunc{
			middleware.OptionalJWTAuthMiddleware(jwtConfig),
			middleware.GuestOwner(middleware.GuestConfig{
				CookieName: cfg.Cookie.GuestName,
				Domain:     cfg.Cookie.Domain,
				Path:       cfg.Cookie.Path,
				Secure:     cfg.Cookie.Secure,
				SameSite:   cfg.Cookie.SameSite,
				MaxAge:     cfg.Cookie.MaxAge,
			}),
		},
		Member: []gin.HandlerFunc{
			middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
			middleware.RequireSession(resolver),
		},
		Admin: []gin.HandlerFunc{
			middleware.JWTAuthMiddlewareWithConfig(adminJWTConfig),
			middleware.AdminOnly(resolver),
		},
		Payload: middleware.PayloadLimit(cfg.HTTP.MaxPayloadSize),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		guards.AuthLimit = middleware.AuthRateLimit(authLimiter)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", handlers.System.Health)

	r := router.RegisterStorefront(router.NewRouter(engine, router.WithAPIVersion("v1")), handlers, guards)
	r.Setup()
	log.Info("Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// websocket connections are hijacked and not tracked by Shutdown
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	return nil
}
