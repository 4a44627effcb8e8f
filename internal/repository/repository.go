package repository

import (
	"context"

	"github.com/prohmpiriya/eventhub/internal/domain"
)

// UserRepository persists users and their profiles
type UserRepository interface {
	// Create inserts the user and an empty profile in one transaction
	Create(ctx context.Context, user *domain.User, profile *domain.UserProfile) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.UserProfile) error
}

// EventRepository persists events
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// Update writes editable fields; capacity may not drop below sold tickets
	Update(ctx context.Context, event *domain.Event) error
	Cancel(ctx context.Context, id string) error
	// List returns annotated events for the viewer and the unpaged total
	List(ctx context.Context, filter *domain.EventFilter) ([]*domain.EventView, int, error)
	GetView(ctx context.Context, id, viewerID string) (*domain.EventView, error)
	// SubscriberIDs returns users holding an active subscription
	SubscriberIDs(ctx context.Context, eventID string) ([]string, error)
}

// RefundFunc issues a refund once a cancellation has been claimed. It returns
// the REFUND row to store, or nil when nothing was charged.
type RefundFunc func(ctx context.Context) (*domain.Payment, error)

// SubscriptionRepository persists subscriptions together with ticket counts
type SubscriptionRepository interface {
	// Create locks the event, re-checks availability, inserts the
	// subscription and increments sold_tickets in one transaction
	Create(ctx context.Context, sub *domain.Subscription) error
	// Cancel claims the subscription, runs refund (which may be nil),
	// releases its tickets and stores the refund row in one transaction.
	// Only the caller that wins the claim runs refund; a refund error
	// rolls the claim back.
	Cancel(ctx context.Context, sub *domain.Subscription, refund RefundFunc) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID, eventID string, includeCancelled bool) ([]*domain.Subscription, error)
	// Balance sums successful minus refunded payments over the user's subscriptions for an event
	Balance(ctx context.Context, userID, eventID string) (*domain.Balance, error)
	IsPaymentUsed(ctx context.Context, paymentID string) (bool, error)
}

// PaymentRepository persists charges and refunds
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	// UpdateStatus writes status, gateway_ref and failure_reason
	UpdateStatus(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error)
}

// InvitationRepository persists invitations keyed by (event, email)
type InvitationRepository interface {
	// Upsert updates the invitation for (event_id, email) or creates it.
	// The stored id and created_at are written back into inv.
	Upsert(ctx context.Context, inv *domain.Invitation) error
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	Delete(ctx context.Context, id string) error
	// ListByOrganizer lists invitations of the organizer's events; empty
	// organizerID lists all
	ListByOrganizer(ctx context.Context, organizerID, eventID string) ([]*domain.Invitation, error)
	ListForUser(ctx context.Context, userID, email string) ([]*domain.Invitation, error)
	// Discount returns the invitation discount percent, 0 when not invited
	Discount(ctx context.Context, eventID, email string) (float64, error)
	// LinkUser attaches a newly registered user to invitations sent to their email
	LinkUser(ctx context.Context, email, userID string) error
}

// NotificationRepository persists per-user notifications
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*domain.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// WishlistRepository persists wishlist entries with soft delete
type WishlistRepository interface {
	// Add inserts the entry or revives a soft-deleted one
	Add(ctx context.Context, item *domain.WishListItem) error
	// Remove soft-deletes; reports false when no active entry existed
	Remove(ctx context.Context, userID, eventID string) (bool, error)
	ListActive(ctx context.Context, userID string) ([]*domain.WishListItem, error)
}
