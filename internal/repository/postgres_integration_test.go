package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_HOST") == "" {
		t.Skip("TEST_POSTGRES_HOST not set, skipping integration test")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getPostgresPool connects to the test database and applies the schema
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("TEST_POSTGRES_USER", "postgres"),
		getEnv("TEST_POSTGRES_PASSWORD", "postgres"),
		getEnv("TEST_POSTGRES_HOST", "localhost"),
		getEnv("TEST_POSTGRES_PORT", "5432"),
		getEnv("TEST_POSTGRES_DB", "eventhub_test"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	for _, stmt := range Migrations {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	t.Cleanup(pool.Close)
	return pool
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, role domain.Role) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@test.local",
		PasswordHash: "x",
		Name:         "Test",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), user, nil))
	return user
}

func createTestEvent(t *testing.T, repo *PostgresEventRepository, organizerID string, capacity int, price float64) *domain.Event {
	t.Helper()
	now := time.Now()
	event := &domain.Event{
		ID:          uuid.New().String(),
		OrganizerID: organizerID,
		Name:        "Integration " + uuid.New().String()[:8],
		StartAt:     now.Add(24 * time.Hour),
		EndAt:       now.Add(26 * time.Hour),
		Capacity:    capacity,
		TicketPrice: price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestPostgresSubscriptionRepository_CreateCancelBalance(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()

	users := NewPostgresUserRepository(pool)
	events := NewPostgresEventRepository(pool)
	payments := NewPostgresPaymentRepository(pool)
	subs := NewPostgresSubscriptionRepository(pool)

	organizer := createTestUser(t, users, domain.RoleOrganizer)
	buyer := createTestUser(t, users, domain.RoleSubscriber)
	event := createTestEvent(t, events, organizer.ID, 3, 10)

	payment, err := domain.NewPayment(buyer.ID, event.ID, 20, 0, "usd")
	require.NoError(t, err)
	require.NoError(t, payment.Complete("mock_1"))
	require.NoError(t, payments.Create(ctx, payment))

	sub := &domain.Subscription{
		ID:        uuid.New().String(),
		UserID:    buyer.ID,
		EventID:   event.ID,
		PaymentID: &payment.ID,
		Tickets:   2,
		CreatedAt: time.Now(),
	}
	require.NoError(t, subs.Create(ctx, sub))

	stored, err := events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.SoldTickets)

	used, err := subs.IsPaymentUsed(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, used)

	over := &domain.Subscription{ID: uuid.New().String(), UserID: buyer.ID, EventID: event.ID, Tickets: 2, CreatedAt: time.Now()}
	assert.ErrorIs(t, subs.Create(ctx, over), domain.ErrNotEnoughTickets)

	balance, err := subs.Balance(ctx, buyer.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, balance.Total)

	gatewayDown := errors.New("gateway down")
	err = subs.Cancel(ctx, sub, func(ctx context.Context) (*domain.Payment, error) {
		return nil, gatewayDown
	})
	assert.ErrorIs(t, err, gatewayDown)
	assert.False(t, sub.IsCancelled)

	refunds := 0
	refund := func(ctx context.Context) (*domain.Payment, error) {
		refunds++
		return payment.NewRefund("mock_re_1")
	}
	require.NoError(t, subs.Cancel(ctx, sub, refund))
	assert.True(t, sub.IsCancelled)
	assert.ErrorIs(t, subs.Cancel(ctx, sub, refund), domain.ErrSubscriptionCancelled)
	assert.Equal(t, 1, refunds)

	stored, err = events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.SoldTickets)

	balance, err = subs.Balance(ctx, buyer.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, balance.Successful)
	assert.Equal(t, 20.0, balance.Refunded)
	assert.Equal(t, 0.0, balance.Total)
}

func TestPostgresEventRepository_ListAnnotations(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()

	users := NewPostgresUserRepository(pool)
	events := NewPostgresEventRepository(pool)
	subs := NewPostgresSubscriptionRepository(pool)
	wishlist := NewPostgresWishlistRepository(pool)

	organizer := createTestUser(t, users, domain.RoleOrganizer)
	viewer := createTestUser(t, users, domain.RoleSubscriber)
	event := createTestEvent(t, events, organizer.ID, 5, 0)

	require.NoError(t, subs.Create(ctx, &domain.Subscription{
		ID: uuid.New().String(), UserID: viewer.ID, EventID: event.ID, Tickets: 2, CreatedAt: time.Now(),
	}))
	require.NoError(t, wishlist.Add(ctx, &domain.WishListItem{ID: uuid.New().String(), UserID: viewer.ID, EventID: event.ID}))

	views, total, err := events.List(ctx, &domain.EventFilter{
		OrganizerID: organizer.ID,
		ViewerID:    viewer.ID,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].RemainingTickets)
	assert.Equal(t, 2, views[0].UserTickets)
	assert.True(t, views[0].IsWishlisted)

	removed, err := wishlist.Remove(ctx, viewer.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = wishlist.Remove(ctx, viewer.ID, event.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	view, err := events.GetView(ctx, event.ID, viewer.ID)
	require.NoError(t, err)
	assert.False(t, view.IsWishlisted)
}

func TestPostgresInvitationRepository_Upsert(t *testing.T) {
	pool := getPostgresPool(t)
	ctx := context.Background()

	users := NewPostgresUserRepository(pool)
	events := NewPostgresEventRepository(pool)
	invitations := NewPostgresInvitationRepository(pool)

	organizer := createTestUser(t, users, domain.RoleOrganizer)
	event := createTestEvent(t, events, organizer.ID, 5, 10)

	first := &domain.Invitation{ID: uuid.New().String(), EventID: event.ID, Email: "guest@test.local", Discount: 10, CreatedBy: organizer.ID}
	require.NoError(t, invitations.Upsert(ctx, first))

	second := &domain.Invitation{ID: uuid.New().String(), EventID: event.ID, Email: "guest@test.local", Discount: 25, CreatedBy: organizer.ID}
	require.NoError(t, invitations.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	discount, err := invitations.Discount(ctx, event.ID, "guest@test.local")
	require.NoError(t, err)
	assert.Equal(t, 25.0, discount)

	_, err = invitations.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)
}
