package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/coupang-catalog/backend/internal/application/catalog"
	appintegration "github.com/coupang-catalog/backend/internal/application/integration"
	appview "github.com/coupang-catalog/backend/internal/application/view"
	"github.com/coupang-catalog/backend/internal/infrastructure/cache"
	"github.com/coupang-catalog/backend/internal/infrastructure/config"
	"github.com/coupang-catalog/backend/internal/infrastructure/event"
	"github.com/coupang-catalog/backend/internal/infrastructure/logger"
	"github.com/coupang-catalog/backend/internal/infrastructure/n8n"
	"github.com/coupang-catalog/backend/internal/infrastructure/notion"
	"github.com/coupang-catalog/backend/internal/infrastructure/sanitize"
	"github.com/coupang-catalog/backend/internal/infrastructure/storage"
	"github.com/coupang-catalog/backend/internal/infrastructure/telemetry"
	"github.com/coupang-catalog/backend/internal/interfaces/http/handler"
	"github.com/coupang-catalog/backend/internal/interfaces/http/middleware"
	"github.com/coupang-catalog/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting catalog backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", handler.Version),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    handler.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    handler.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    handler.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	// Forward application logs to the collector when OTEL logs are on
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          logger.ParseLevel(cfg.Telemetry.LogsLevel),
		})
		bridged, err := logger.New(logCfg, otelCore)
		if err != nil {
			log.Fatal("Failed to bridge logger to OpenTelemetry", zap.Error(err))
		}
		_ = log.Sync()
		log = bridged
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meterProvider.Meter("coupang-catalog/business"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Catalog
	source, err := storage.NewSource(ctx, cfg.Catalog.Source, storage.Options{
		Storage: &cfg.Storage,
		Timeout: cfg.Catalog.FetchTimeout,
		MaxSize: cfg.Catalog.MaxSize,
		Logger:  log,
	})
	if err != nil {
		log.Fatal("Failed to configure catalog source", zap.Error(err))
	}

	var sanitizer appcatalog.DocumentSanitizer
	if cfg.Catalog.Sanitize {
		sanitizer = sanitize.NewDocumentSanitizer()
	}

	catalogService := appcatalog.NewCatalogService(source, sanitizer, log)
	catalogService.SetBusinessMetrics(businessMetrics)
	catalogService.SetEventBus(eventBus)

	// Outbound integrations
	n8nAdapter, err := n8n.NewAdapter(&n8n.Config{
		Timeout:         cfg.Webhook.Timeout,
		MaxResponseSize: cfg.Webhook.MaxResponseSize,
		APIBaseURL:      cfg.Webhook.N8NAPIBaseURL,
	}, n8n.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize n8n adapter", zap.Error(err))
	}

	notionAdapter, err := notion.NewAdapter(&notion.Config{
		BaseURL: cfg.Notion.BaseURL,
		Version: cfg.Notion.Version,
		Timeout: cfg.Notion.Timeout,
	}, notion.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize notion adapter", zap.Error(err))
	}

	dispatcher := appintegration.NewDispatcher(n8nAdapter, n8nAdapter, notionAdapter, log)
	dispatcher.SetBusinessMetrics(businessMetrics)
	dispatcher.SetEventBus(eventBus)

	// View sessions
	sessionStore, err := cache.NewSessionStoreFactory(cfg.Session, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}

	sessionService := appview.NewSessionService(sessionStore, catalogService, dispatcher, log)
	sessionService.SetBusinessMetrics(businessMetrics)

	// Handlers
	statusStream := handler.NewStatusStreamHandler(dispatcher, handler.WithSSELogger(log))
	handlers := router.Handlers{
		System:       handler.NewSystemHandler(cfg.App.Name, catalogService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Session:      handler.NewSessionHandler(sessionService),
		Integration:  handler.NewIntegrationHandler(dispatcher, catalogService, sessionService),
		StatusStream: statusStream,
	}

	logHandler := event.NewLogHandler(log)
	eventBus.Subscribe(logHandler, logHandler.EventTypes()...)
	eventBus.Subscribe(statusStream, statusStream.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	statusStream.Start()

	if cfg.Catalog.LoadOnStart {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.FetchTimeout+5*time.Second)
		if _, err := catalogService.Load(loadCtx); err != nil {
			// The server still starts; POST /catalog/reload retries
			log.Error("Initial catalog load failed",
				zap.String("source", cfg.Catalog.Source),
				zap.Error(err),
			)
		}
		cancel()
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

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
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing and metrics
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Secure())

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))

	// Routes
	r := router.NewRouter(engine)
	r.Register(handlers.DomainGroups()...).Setup()
	router.RegisterHealth(engine, handlers.System)

	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// SSE clients hold connections open; release them first
	statusStream.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Failed to stop event bus", zap.Error(err))
	}
	if err := sessionStore.Close(); err != nil {
		log.Warn("Failed to close session store", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
