package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appnotification "github.com/RCushmaniii/order-now-mvp-sub001/internal/application/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/shared"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/auth"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/cache"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/config"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/event"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/persistence"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/telemetry"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/templates"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/whatsapp"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/handler"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/middleware"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Order Notifications API
//	@version		1.0
//	@description	WhatsApp order notifications for the storefront: status messages, inbound replies and delivery tracking.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Service token. Format: "Bearer {token}"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	testMode := cfg.TestMode()
	log.Info("Starting order notification service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("test_mode", testMode),
	)
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error flushing traces", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		// Postgres schemas are owned by cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	if tp.IsEnabled() && cfg.Telemetry.DBTracing {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName, otel.GetTracerProvider()); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	store, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cfg.App.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	idempotency := shared.DefaultIdempotencyConfig()
	if cfg.Notification.IdempotencyTTL > 0 {
		idempotency.TTL = cfg.Notification.IdempotencyTTL
	}

	orderRepo := persistence.NewGormOrderRepository(db.DB)
	messageRepo := persistence.NewGormInboundMessageRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRecordRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	audit := appnotification.NewAuditHandler(log)
	eventBus.Subscribe(event.NewIdempotentHandler(audit, store, idempotency, log), audit.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	sender, err := whatsapp.NewSender(whatsapp.Config{
		AccessToken:   cfg.WhatsApp.AccessToken,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		APIBaseURL:    cfg.WhatsApp.APIBaseURL,
		Timeout:       cfg.WhatsApp.Timeout,
		TestMode:      testMode,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize WhatsApp sender", zap.Error(err))
	}
	if testMode {
		log.Warn("WhatsApp sends are simulated; no messages leave this process")
	}

	metrics := telemetry.NewMetrics()
	phones := notification.NewPhoneNormalizer(cfg.WhatsApp.CountryCode, cfg.WhatsApp.LocalNumberLength)
	engineOpts := []templates.Option{templates.WithSiteURL(cfg.App.SiteURL), templates.WithLogger(log)}
	if cfg.Notification.MaxBodyLength > 0 {
		engineOpts = append(engineOpts, templates.WithMaxLength(cfg.Notification.MaxBodyLength))
	}
	renderer := templates.NewEngine(engineOpts...)

	dispatcher := appnotification.NewDispatcher(sender, renderer, phones, log)
	dispatcher.SetMetrics(metrics)

	tracker := appnotification.NewDeliveryTracker(deliveryRepo, log)
	tracker.SetMetrics(metrics)
	tracker.SetEventPublisher(eventBus)

	statusService := appnotification.NewOrderStatusService(orderRepo, dispatcher, tracker, store, idempotency, log)
	statusService.SetEventPublisher(eventBus)

	inbound := appnotification.NewInboundRouter(appnotification.InboundRouterDeps{
		Messages:      messageRepo,
		Orders:        orderRepo,
		Tracker:       tracker,
		Dispatcher:    dispatcher,
		Engine:        renderer,
		Phones:        phones,
		Store:         store,
		Idempotency:   idempotency,
		DefaultLocale: notification.ParseLocale(cfg.Notification.DefaultLocale),
	}, log)
	inbound.SetMetrics(metrics)

	if cfg.WhatsApp.VerifyToken == "" {
		log.Warn("WhatsApp verify token is not set; webhook verification will always be refused")
	}

	tokens := auth.NewServiceTokenService(cfg.Auth)
	if !tokens.Enabled() {
		log.Warn("Service token secret is not set; /api/v1 accepts anonymous calls outside production")
	}

	var routeMetrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		routeMetrics = metrics
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.App.Name,
		TracingEnabled: tp.IsEnabled(),
		TracerProvider: otel.GetTracerProvider(),
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    middleware.DefaultCORSConfig().ExposeHeaders,
			AllowCredentials: false,
			MaxAge:           middleware.DefaultCORSConfig().MaxAge,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Metrics:        routeMetrics,
		MetricsPath:    cfg.Metrics.Path,
		Auth: middleware.ServiceAuthConfig{
			Validator:      tokens,
			AllowAnonymous: !cfg.App.IsProduction(),
			Logger:         log,
		},
		Logger: log,
	}, router.Handlers{
		Webhook:      handler.NewWebhookHandler(appnotification.NewWebhookVerifier(cfg.WhatsApp.VerifyToken), inbound),
		Notification: handler.NewNotificationHandler(dispatcher),
		Order:        handler.NewOrderHandler(statusService),
		Delivery:     handler.NewDeliveryHandler(tracker),
		Health:       handler.NewHealthHandler(db, version, testMode),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
