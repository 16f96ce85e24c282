package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comanda/backend/internal/application/comanda"
	"github.com/comanda/backend/internal/application/report"
	"github.com/comanda/backend/internal/infrastructure/auth"
	"github.com/comanda/backend/internal/infrastructure/cache"
	"github.com/comanda/backend/internal/infrastructure/config"
	"github.com/comanda/backend/internal/infrastructure/event"
	"github.com/comanda/backend/internal/infrastructure/logger"
	"github.com/comanda/backend/internal/infrastructure/migration"
	"github.com/comanda/backend/internal/infrastructure/persistence"
	"github.com/comanda/backend/internal/infrastructure/telemetry"
	"github.com/comanda/backend/internal/interfaces/http/handler"
	"github.com/comanda/backend/internal/interfaces/http/middleware"
	"github.com/comanda/backend/internal/interfaces/http/router"
	"github.com/comanda/backend/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/comanda/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Comanda API
//	@version		1.0
//	@description	Tab and catalog management for the shop counter

//	@contact.name	Comanda Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const initialLoadTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OpenTelemetry: traces, metrics and the zap logs bridge
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		log, err = logger.New(logCfg, loggerProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Comanda Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with zap-backed GORM logging and query tracing
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQuery),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		if err := telemetry.RegisterDBPoolMetrics(meterProvider.Meter("comanda-db"), db.PoolStats); err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Store over the GORM repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	tabRepo := persistence.NewGormTabRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	store := comanda.NewStore(productRepo, tabRepo,
		comanda.WithEventPublisher(eventBus),
		comanda.WithLogger(log),
	)

	// Reports with a Redis or in-memory cache for past days
	location, err := cfg.Report.Location()
	if err != nil {
		log.Fatal("Invalid report timezone", zap.Error(err))
	}
	reportCache, closeReportCache, err := cache.NewReportCacheFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create report cache", zap.Error(err))
	}
	defer func() {
		if err := closeReportCache(); err != nil {
			log.Error("Error closing report cache", zap.Error(err))
		}
	}()
	reportService := report.NewService(store,
		report.WithCache(reportCache, cfg.Report.CacheTTL),
		report.WithLocation(location),
		report.WithLogger(log),
	)

	store.OnReload(reportService.InvalidateAll)

	// Event handlers
	eventBus.Subscribe(report.NewCacheInvalidationHandler(reportService, log))
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    meterProvider.Meter("comanda"),
		Logger:   log,
		OpenTabs: func() int { return len(store.GetOpenTabs()) },
	})
	if err != nil {
		log.Warn("Business metrics unavailable", zap.Error(err))
	} else {
		eventBus.Subscribe(businessMetrics)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	loadCtx, cancelLoad := context.WithTimeout(ctx, initialLoadTimeout)
	if err := store.FetchInitialData(loadCtx); err != nil {
		log.Error("Initial load failed, /health reports loading until a reload succeeds", zap.Error(err))
	} else {
		log.Info("Initial data loaded",
			zap.Int("products", len(store.ListProducts())),
			zap.Int("open_tabs", len(store.GetOpenTabs())),
		)
	}
	cancelLoad()

	// Handlers
	productHandler := handler.NewProductHandler(store)
	tabHandler := handler.NewTabHandler(store)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, store, db)

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

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = tracerProvider.IsEnabled()
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Meter:   meterProvider.Meter("comanda-http"),
		Enabled: meterProvider.IsEnabled(),
		Logger:  log,
	}))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	var swaggerAuth gin.HandlerFunc
	if cfg.JWT.Enabled {
		verifier := auth.NewSessionVerifier(cfg.JWT)
		authCfg := middleware.DefaultSessionAuthConfig(verifier)
		authCfg.Logger = log
		r.Use(middleware.SessionAuthWithConfig(authCfg))

		swaggerAuthCfg := authCfg
		swaggerAuthCfg.SkipPathPrefixes = nil
		swaggerAuth = middleware.SessionAuthWithConfig(swaggerAuthCfg)
	} else {
		log.Warn("JWT authentication disabled, the API is open")
	}
	r.Use(middleware.TracingAttributeInjector())

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, swaggerAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	for _, group := range router.ComandaRoutes(router.Handlers{
		Product: productHandler,
		Tab:     tabHandler,
		Report:  reportHandler,
		System:  systemHandler,
	}) {
		r.Register(group)
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// applyMigrations brings the schema up to date from the migrations embedded in the binary
func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	m, err := migration.NewFromFS(db.SQL(), migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}
