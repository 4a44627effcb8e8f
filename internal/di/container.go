package di

import (
	"context"
	"errors"

	"github.com/prohmpiriya/eventhub/internal/gateway"
	"github.com/prohmpiriya/eventhub/internal/handler"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/internal/service"
	"github.com/prohmpiriya/eventhub/pkg/database"
	"github.com/prohmpiriya/eventhub/pkg/middleware"
	"github.com/prohmpiriya/eventhub/pkg/redis"
)

// Container holds all dependencies for the API server
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.EventPublisher

	// Gateways
	PaymentGateway gateway.PaymentGateway

	// Repositories
	UserRepo         repository.UserRepository
	EventRepo        repository.EventRepository
	SubscriptionRepo repository.SubscriptionRepository
	PaymentRepo      repository.PaymentRepository
	InvitationRepo   repository.InvitationRepository
	NotificationRepo repository.NotificationRepository
	WishlistRepo     repository.WishlistRepository
	ResetTokenRepo   repository.ResetTokenRepository

	// Services
	AuthService         service.AuthService
	NotificationService service.NotificationService
	PaymentService      service.PaymentService
	EventService        service.EventService
	SubscriptionService service.SubscriptionService
	InvitationService   service.InvitationService
	WishlistService     service.WishlistService

	// Handlers
	HealthHandler       *handler.HealthHandler
	AuthHandler         *handler.AuthHandler
	EventHandler        *handler.EventHandler
	SubscriptionHandler *handler.SubscriptionHandler
	PaymentHandler      *handler.PaymentHandler
	InvitationHandler   *handler.InvitationHandler
	NotificationHandler *handler.NotificationHandler
	WishlistHandler     *handler.WishlistHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	Publisher      service.EventPublisher
	PaymentGateway gateway.PaymentGateway
	AuthConfig     *service.AuthServiceConfig
	PaymentConfig  *service.PaymentServiceConfig
}

// NewContainer wires repositories, services and handlers
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg.DB == nil {
		return nil, errors.New("database is required")
	}
	if cfg.Redis == nil {
		return nil, errors.New("redis is required")
	}
	if cfg.PaymentGateway == nil {
		return nil, errors.New("payment gateway is required")
	}
	if cfg.AuthConfig == nil {
		return nil, errors.New("auth config is required")
	}
	if cfg.PaymentConfig == nil {
		cfg.PaymentConfig = &service.PaymentServiceConfig{}
	}

	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		Publisher:      cfg.Publisher,
		PaymentGateway: cfg.PaymentGateway,
	}

	pool := c.DB.Pool()
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.SubscriptionRepo = repository.NewPostgresSubscriptionRepository(pool)
	c.PaymentRepo = repository.NewPostgresPaymentRepository(pool)
	c.InvitationRepo = repository.NewPostgresInvitationRepository(pool)
	c.NotificationRepo = repository.NewPostgresNotificationRepository(pool)
	c.WishlistRepo = repository.NewPostgresWishlistRepository(pool)
	c.ResetTokenRepo = repository.NewRedisResetTokenRepository(c.Redis)

	if c.Publisher == nil {
		c.Publisher = service.NewDirectEventPublisher(c.NotificationRepo)
	}

	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.Publisher)
	c.AuthService = service.NewAuthService(c.UserRepo, c.InvitationRepo, c.ResetTokenRepo, c.Publisher, cfg.AuthConfig)
	c.PaymentService = service.NewPaymentService(c.PaymentRepo, c.EventRepo, c.InvitationRepo, c.PaymentGateway, cfg.PaymentConfig)
	c.EventService = service.NewEventService(c.EventRepo, c.NotificationService)
	c.SubscriptionService = service.NewSubscriptionService(c.SubscriptionRepo, c.EventRepo, c.PaymentRepo, c.PaymentService, c.NotificationService)
	c.InvitationService = service.NewInvitationService(c.InvitationRepo, c.EventRepo, c.UserRepo, c.NotificationService)
	c.WishlistService = service.NewWishlistService(c.WishlistRepo, c.EventRepo)

	c.HealthHandler = handler.NewHealthHandler(map[string]handler.HealthChecker{
		"database": c.DB,
		"redis":    c.Redis,
	})
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.SubscriptionHandler = handler.NewSubscriptionHandler(c.SubscriptionService)
	c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService)
	c.InvitationHandler = handler.NewInvitationHandler(c.InvitationService)
	c.NotificationHandler = handler.NewNotificationHandler(c.NotificationService)
	c.WishlistHandler = handler.NewWishlistHandler(c.WishlistService)

	return c, nil
}

// RouterConfig returns the handler set ready for handler.NewRouter
func (c *Container) RouterConfig() *handler.RouterConfig {
	return &handler.RouterConfig{
		ValidateToken: TokenValidator(c.AuthService),
		Idempotency:   &middleware.IdempotencyConfig{Redis: c.Redis},
		Auth:          c.AuthHandler,
		Event:         c.EventHandler,
		Subscription:  c.SubscriptionHandler,
		Payment:       c.PaymentHandler,
		Invitation:    c.InvitationHandler,
		Notification:  c.NotificationHandler,
		Wishlist:      c.WishlistHandler,
		Health:        c.HealthHandler,
	}
}

// Close releases the publisher. DB and Redis are owned by the caller.
func (c *Container) Close() error {
	if c.Publisher != nil {
		return c.Publisher.Close()
	}
	return nil
}

// TokenValidator adapts AuthService.ValidateToken to the middleware signature
func TokenValidator(auth service.AuthService) middleware.TokenValidator {
	return func(ctx context.Context, token string) (*middleware.Identity, error) {
		claims, err := auth.ValidateToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   string(claims.Role),
		}, nil
	}
}
