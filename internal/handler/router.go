package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/metrics"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/middleware"
	"github.com/prohmpiriya/eventhub/pkg/response"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.uber.org/zap"
)

// RouterConfig carries everything NewRouter mounts
type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	Logger         *logger.Logger

	// ValidateToken resolves bearer tokens for protected routes
	ValidateToken middleware.TokenValidator
	// Idempotency is nil when Redis is unavailable
	Idempotency *middleware.IdempotencyConfig

	Auth         *AuthHandler
	Event        *EventHandler
	Subscription *SubscriptionHandler
	Payment      *PaymentHandler
	Invitation   *InvitationHandler
	Notification *NotificationHandler
	Wishlist     *WishlistHandler
	Health       *HealthHandler
}

// NewRouter builds the gin engine with the full middleware chain and routes
func NewRouter(cfg *RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		response.JSON(c, response.NotFound("resource not found"))
	})
	router.NoMethod(func(c *gin.Context) {
		response.JSON(c, response.MethodNotAllowed())
	})

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		response.Abort(c, response.InternalError("internal server error"))
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(telemetry.TracingMiddleware(cfg.ServiceName))
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.Health != nil {
		router.GET("/health", cfg.Health.Health)
		router.GET("/ready", cfg.Health.Ready)
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := middleware.JWTAuth(cfg.ValidateToken)
	optionalAuth := middleware.OptionalJWTAuth(cfg.ValidateToken)
	organizerOnly := middleware.RequireRoles(string(domain.RoleOrganizer), string(domain.RoleAdmin))

	// write puts the idempotency check right before the final handler
	var idempotent gin.HandlerFunc
	if cfg.Idempotency != nil {
		idempotent = middleware.Idempotency(cfg.Idempotency)
	}
	write := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if idempotent == nil {
			return handlers
		}
		last := len(handlers) - 1
		chain := append([]gin.HandlerFunc{}, handlers[:last]...)
		return append(chain, idempotent, handlers[last])
	}

	auth := router.Group("/authentication")
	{
		auth.POST("/registration", cfg.Auth.Register)
		auth.POST("/login", cfg.Auth.Login)
		auth.POST("/reset-password", cfg.Auth.ResetPassword)
		auth.POST("/reset-password/confirm", cfg.Auth.ConfirmResetPassword)
		auth.POST("/change-password", requireAuth, cfg.Auth.ChangePassword)
		auth.GET("/profile", requireAuth, cfg.Auth.GetProfile)
		auth.PATCH("/profile", requireAuth, cfg.Auth.UpdateProfile)
	}

	core := router.Group("/core")
	{
		events := core.Group("/event")
		events.GET("/", optionalAuth, cfg.Event.List)
		events.GET("/:id", optionalAuth, cfg.Event.Get)
		events.POST("/", write(requireAuth, organizerOnly, cfg.Event.Create)...)
		events.PATCH("/:id", requireAuth, cfg.Event.Update)
		events.POST("/:id/cancel", write(requireAuth, cfg.Event.Cancel)...)

		subscriptions := core.Group("/subscription", requireAuth)
		subscriptions.GET("/", cfg.Subscription.List)
		subscriptions.POST("/", write(cfg.Subscription.Create)...)
		subscriptions.POST("/:id/cancel", write(cfg.Subscription.Cancel)...)

		wishlist := core.Group("/wishlist", requireAuth)
		wishlist.GET("/", cfg.Wishlist.List)
		wishlist.POST("/", cfg.Wishlist.Add)
		wishlist.DELETE("/:event_id", cfg.Wishlist.Remove)

		invites := core.Group("/invite", requireAuth)
		invites.GET("/", cfg.Invitation.List)
		invites.POST("/", cfg.Invitation.Create)
		invites.DELETE("/:id", cfg.Invitation.Delete)

		notifications := core.Group("/notification", requireAuth)
		notifications.GET("/", cfg.Notification.List)
		notifications.PATCH("/", cfg.Notification.MarkRead)
	}

	payments := router.Group("/payment", requireAuth)
	{
		payments.POST("/", write(cfg.Payment.Create)...)
		payments.GET("/", cfg.Payment.List)
		payments.GET("/:id", cfg.Payment.Get)
	}

	return router
}
