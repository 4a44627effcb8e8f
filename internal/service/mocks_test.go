package service

import (
	"context"
	"sync"
	"time"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/gateway"
	"github.com/prohmpiriya/eventhub/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	CreateFunc         func(ctx context.Context, user *domain.User, profile *domain.UserProfile) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*domain.User, error)
	UpdateFunc         func(ctx context.Context, user *domain.User) error
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
	GetProfileFunc     func(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpsertProfileFunc  func(ctx context.Context, profile *domain.UserProfile) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User, profile *domain.UserProfile) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user, profile)
	}
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return &domain.UserProfile{UserID: userID}, nil
}

func (m *MockUserRepository) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, profile)
	}
	return nil
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc        func(ctx context.Context, event *domain.Event) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Event, error)
	UpdateFunc        func(ctx context.Context, event *domain.Event) error
	CancelFunc        func(ctx context.Context, id string) error
	ListFunc          func(ctx context.Context, filter *domain.EventFilter) ([]*domain.EventView, int, error)
	GetViewFunc       func(ctx context.Context, id, viewerID string) (*domain.EventView, error)
	SubscriberIDsFunc func(ctx context.Context, eventID string) ([]string, error)
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) Cancel(ctx context.Context, id string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id)
	}
	return nil
}

func (m *MockEventRepository) List(ctx context.Context, filter *domain.EventFilter) ([]*domain.EventView, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*domain.EventView{}, 0, nil
}

func (m *MockEventRepository) GetView(ctx context.Context, id, viewerID string) (*domain.EventView, error) {
	if m.GetViewFunc != nil {
		return m.GetViewFunc(ctx, id, viewerID)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) SubscriberIDs(ctx context.Context, eventID string) ([]string, error) {
	if m.SubscriberIDsFunc != nil {
		return m.SubscriberIDsFunc(ctx, eventID)
	}
	return nil, nil
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository
type MockSubscriptionRepository struct {
	CreateFunc        func(ctx context.Context, sub *domain.Subscription) error
	CancelFunc        func(ctx context.Context, sub *domain.Subscription, refund repository.RefundFunc) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Subscription, error)
	ListByUserFunc    func(ctx context.Context, userID, eventID string, includeCancelled bool) ([]*domain.Subscription, error)
	BalanceFunc       func(ctx context.Context, userID, eventID string) (*domain.Balance, error)
	IsPaymentUsedFunc func(ctx context.Context, paymentID string) (bool, error)
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sub)
	}
	return nil
}

func (m *MockSubscriptionRepository) Cancel(ctx context.Context, sub *domain.Subscription, refund repository.RefundFunc) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, sub, refund)
	}
	if refund != nil {
		if _, err := refund(ctx); err != nil {
			return err
		}
	}
	sub.IsCancelled = true
	return nil
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (m *MockSubscriptionRepository) ListByUser(ctx context.Context, userID, eventID string, includeCancelled bool) ([]*domain.Subscription, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, eventID, includeCancelled)
	}
	return []*domain.Subscription{}, nil
}

func (m *MockSubscriptionRepository) Balance(ctx context.Context, userID, eventID string) (*domain.Balance, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx, userID, eventID)
	}
	return domain.NewBalance(eventID, 0, 0), nil
}

func (m *MockSubscriptionRepository) IsPaymentUsed(ctx context.Context, paymentID string) (bool, error) {
	if m.IsPaymentUsedFunc != nil {
		return m.IsPaymentUsedFunc(ctx, paymentID)
	}
	return false, nil
}

// MockPaymentRepository is an in-memory PaymentRepository
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment

	CreateFunc func(ctx context.Context, payment *domain.Payment) error
}

func NewMockPaymentRepository(seed ...*domain.Payment) *MockPaymentRepository {
	m := &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
	for _, p := range seed {
		m.payments[p.ID] = p
	}
	return m
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return domain.ErrPaymentNotFound
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Payment, 0)
	for _, p := range m.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPaymentRepository) byStatus(status domain.PaymentStatus) []*domain.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// MockInvitationRepository is a mock implementation of InvitationRepository
type MockInvitationRepository struct {
	UpsertFunc          func(ctx context.Context, inv *domain.Invitation) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Invitation, error)
	DeleteFunc          func(ctx context.Context, id string) error
	ListByOrganizerFunc func(ctx context.Context, organizerID, eventID string) ([]*domain.Invitation, error)
	ListForUserFunc     func(ctx context.Context, userID, email string) ([]*domain.Invitation, error)
	DiscountFunc        func(ctx context.Context, eventID, email string) (float64, error)
	LinkUserFunc        func(ctx context.Context, email, userID string) error
}

func (m *MockInvitationRepository) Upsert(ctx context.Context, inv *domain.Invitation) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, inv)
	}
	return nil
}

func (m *MockInvitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrInvitationNotFound
}

func (m *MockInvitationRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockInvitationRepository) ListByOrganizer(ctx context.Context, organizerID, eventID string) ([]*domain.Invitation, error) {
	if m.ListByOrganizerFunc != nil {
		return m.ListByOrganizerFunc(ctx, organizerID, eventID)
	}
	return []*domain.Invitation{}, nil
}

func (m *MockInvitationRepository) ListForUser(ctx context.Context, userID, email string) ([]*domain.Invitation, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID, email)
	}
	return []*domain.Invitation{}, nil
}

func (m *MockInvitationRepository) Discount(ctx context.Context, eventID, email string) (float64, error) {
	if m.DiscountFunc != nil {
		return m.DiscountFunc(ctx, eventID, email)
	}
	return 0, nil
}

func (m *MockInvitationRepository) LinkUser(ctx context.Context, email, userID string) error {
	if m.LinkUserFunc != nil {
		return m.LinkUserFunc(ctx, email, userID)
	}
	return nil
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	CreateBatchFunc func(ctx context.Context, notifications []*domain.Notification) error
	ListFunc        func(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*domain.Notification, error)
	MarkReadFunc    func(ctx context.Context, userID string, ids []string) (int64, error)
	MarkAllReadFunc func(ctx context.Context, userID string) (int64, error)
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []*domain.Notification) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, notifications)
	}
	return nil
}

func (m *MockNotificationRepository) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*domain.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, unreadOnly, limit, offset)
	}
	return []*domain.Notification{}, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, ids)
	}
	return int64(len(ids)), nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return 0, nil
}

// MockWishlistRepository is a mock implementation of WishlistRepository
type MockWishlistRepository struct {
	AddFunc        func(ctx context.Context, item *domain.WishListItem) error
	RemoveFunc     func(ctx context.Context, userID, eventID string) (bool, error)
	ListActiveFunc func(ctx context.Context, userID string) ([]*domain.WishListItem, error)
}

func (m *MockWishlistRepository) Add(ctx context.Context, item *domain.WishListItem) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, item)
	}
	return nil
}

func (m *MockWishlistRepository) Remove(ctx context.Context, userID, eventID string) (bool, error) {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, userID, eventID)
	}
	return true, nil
}

func (m *MockWishlistRepository) ListActive(ctx context.Context, userID string) ([]*domain.WishListItem, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, userID)
	}
	return []*domain.WishListItem{}, nil
}

// MockResetTokenRepository is an in-memory ResetTokenRepository
type MockResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMockResetTokenRepository() *MockResetTokenRepository {
	return &MockResetTokenRepository{tokens: make(map[string]string)}
}

func (m *MockResetTokenRepository) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *MockResetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID := m.tokens[token]
	delete(m.tokens, token)
	return userID, nil
}

// MockEventPublisher records published messages
type MockEventPublisher struct {
	mu            sync.Mutex
	Notifications []*domain.NotificationMessage
	Resets        []*domain.PasswordResetMessage
	Err           error
}

func (m *MockEventPublisher) PublishNotification(ctx context.Context, msg *domain.NotificationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Notifications = append(m.Notifications, msg)
	return nil
}

func (m *MockEventPublisher) PublishPasswordReset(ctx context.Context, msg *domain.PasswordResetMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Resets = append(m.Resets, msg)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// MockGateway is a scripted PaymentGateway
type MockGateway struct {
	ChargeFunc func(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResponse, error)
	RefundFunc func(ctx context.Context, transactionID string, amount float64) (string, error)

	Charges int
	Refunds int
}

func (m *MockGateway) Charge(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	m.Charges++
	if m.ChargeFunc != nil {
		return m.ChargeFunc(ctx, req)
	}
	return &gateway.ChargeResponse{Success: true, TransactionID: "txn_" + req.PaymentID[:8], Status: "succeeded"}, nil
}

func (m *MockGateway) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	m.Refunds++
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, transactionID, amount)
	}
	return "re_" + transactionID, nil
}

func (m *MockGateway) Name() string { return "test" }

// futureEvent returns a paid event starting tomorrow
func futureEvent(id string, capacity, sold int, price float64) *domain.Event {
	start := time.Now().Add(24 * time.Hour)
	return &domain.Event{
		ID:          id,
		OrganizerID: "organizer-1",
		Name:        "Concert",
		StartAt:     start,
		EndAt:       start.Add(2 * time.Hour),
		Capacity:    capacity,
		SoldTickets: sold,
		TicketPrice: price,
	}
}
