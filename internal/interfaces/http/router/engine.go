package router

import (
	"fmt"
	"net/http"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/logger"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/infrastructure/telemetry"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/dto"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/handler"
	"github.com/RCushmaniii/order-now-mvp-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers the engine serves
type Handlers struct {
	Webhook      *handler.WebhookHandler
	Notification *handler.NotificationHandler
	Order        *handler.OrderHandler
	Delivery     *handler.DeliveryHandler
	Health       *handler.HealthHandler
}

// EngineConfig holds everything NewEngine needs besides the handlers
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Metrics        *telemetry.Metrics
	MetricsPath    string
	Auth           middleware.ServiceAuthConfig
	Logger         *zap.Logger
}

const healthPath = "/health"

// NewEngine builds the gin engine: global middleware, the public health,
// metrics and webhook routes, and the service-token protected /api/v1 group.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log, healthPath, cfg.MetricsPath),
		middleware.HTTPMetrics(cfg.Metrics, cfg.MetricsPath),
		middleware.Secure(),
		middleware.CORS(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeMethodNotAllowed, "Method not allowed", middleware.GetRequestID(c)))
	})

	if h.Health != nil {
		engine.GET(healthPath, h.Health.Health)
	}
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		engine.GET(cfg.MetricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}

	if h.Webhook != nil {
		NewResource("/webhooks").
			GET("/whatsapp", h.Webhook.Verify).
			POST("/whatsapp", h.Webhook.Receive).
			Mount(engine)
	}

	NewAPI(WithMiddleware(middleware.ServiceAuth(cfg.Auth))).
		Add(notificationRoutes(h.Notification), orderRoutes(h.Order), deliveryRoutes(h.Delivery)).
		Mount(engine)

	return engine, nil
}

func notificationRoutes(h *handler.NotificationHandler) *Resource {
	if h == nil {
		return nil
	}
	return NewResource("/notifications").
		POST("/orders", h.SendOrderNotification)
}

func orderRoutes(h *handler.OrderHandler) *Resource {
	if h == nil {
		return nil
	}
	return NewResource("/orders").
		POST("/:id/status", h.UpdateStatus).
		POST("/:id/created", h.NotifyCreated)
}

func deliveryRoutes(h *handler.DeliveryHandler) *Resource {
	if h == nil {
		return nil
	}
	return NewResource("/deliveries").
		GET("", h.ListRequiringIntervention).
		GET("/:message_id", h.Get)
}
