package handler

import (
	"context"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/service"
)

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	LoginFunc                func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	ChangePasswordFunc       func(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ConfirmPasswordResetFunc func(ctx context.Context, req *dto.ConfirmResetPasswordRequest) error
	ValidateTokenFunc        func(ctx context.Context, token string) (*domain.Claims, error)
	GetProfileFunc           func(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	UpdateProfileFunc        func(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, req)
	}
	return nil
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, req *dto.ConfirmResetPasswordRequest) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, req)
	}
	return nil
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, domain.ErrInvalidToken
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, req)
	}
	return nil, nil
}

// MockEventService is a mock implementation of EventService for testing
type MockEventService struct {
	ListFunc   func(ctx context.Context, caller *service.Caller, q *dto.EventListQuery) (*dto.EventListResponse, error)
	GetFunc    func(ctx context.Context, caller *service.Caller, id string) (*domain.EventView, error)
	CreateFunc func(ctx context.Context, caller *service.Caller, req *dto.CreateEventRequest) (*domain.Event, error)
	UpdateFunc func(ctx context.Context, caller *service.Caller, id string, req *dto.UpdateEventRequest) (*domain.Event, error)
	CancelFunc func(ctx context.Context, caller *service.Caller, id string) (*domain.Event, error)
}

func (m *MockEventService) List(ctx context.Context, caller *service.Caller, q *dto.EventListQuery) (*dto.EventListResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, caller, q)
	}
	return &dto.EventListResponse{}, nil
}

func (m *MockEventService) Get(ctx context.Context, caller *service.Caller, id string) (*domain.EventView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, caller, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventService) Create(ctx context.Context, caller *service.Caller, req *dto.CreateEventRequest) (*domain.Event, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, caller, req)
	}
	return nil, nil
}

func (m *MockEventService) Update(ctx context.Context, caller *service.Caller, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, caller, id, req)
	}
	return nil, nil
}

func (m *MockEventService) Cancel(ctx context.Context, caller *service.Caller, id string) (*domain.Event, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, caller, id)
	}
	return nil, nil
}

// MockSubscriptionService is a mock implementation of SubscriptionService for testing
type MockSubscriptionService struct {
	SubscribeFunc func(ctx context.Context, caller *service.Caller, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	ListFunc      func(ctx context.Context, userID string, q *dto.SubscriptionListQuery) ([]*domain.Subscription, error)
	CancelFunc    func(ctx context.Context, caller *service.Caller, id string) (*dto.SubscriptionResponse, error)
}

func (m *MockSubscriptionService) Subscribe(ctx context.Context, caller *service.Caller, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, caller, req)
	}
	return nil, nil
}

func (m *MockSubscriptionService) List(ctx context.Context, userID string, q *dto.SubscriptionListQuery) ([]*domain.Subscription, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, q)
	}
	return []*domain.Subscription{}, nil
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, caller *service.Caller, id string) (*dto.SubscriptionResponse, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, caller, id)
	}
	return nil, nil
}

// MockPaymentService is a mock implementation of PaymentService for testing
type MockPaymentService struct {
	CreatePaymentFunc func(ctx context.Context, userID, email string, req *dto.CreatePaymentRequest) (*domain.Payment, error)
	GetPaymentFunc    func(ctx context.Context, id, userID string) (*domain.Payment, error)
	ListPaymentsFunc  func(ctx context.Context, userID string) ([]*domain.Payment, error)
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, userID, email string, req *dto.CreatePaymentRequest) (*domain.Payment, error) {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, userID, email, req)
	}
	return nil, nil
}

func (m *MockPaymentService) Quote(ctx context.Context, email string, event *domain.Event, tickets int) (float64, float64, error) {
	return 0, 0, nil
}

func (m *MockPaymentService) Charge(ctx context.Context, userID, email string, event *domain.Event, tickets int, card dto.CardDetails) (*domain.Payment, error) {
	return nil, nil
}

func (m *MockPaymentService) GetPayment(ctx context.Context, id, userID string) (*domain.Payment, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, id, userID)
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentService) ListPayments(ctx context.Context, userID string) ([]*domain.Payment, error) {
	if m.ListPaymentsFunc != nil {
		return m.ListPaymentsFunc(ctx, userID)
	}
	return []*domain.Payment{}, nil
}

func (m *MockPaymentService) PrepareRefund(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	return nil, nil
}

func (m *MockPaymentService) Refund(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	return nil, nil
}

// MockInvitationService is a mock implementation of InvitationService for testing
type MockInvitationService struct {
	ListFunc   func(ctx context.Context, caller *service.Caller, q *dto.InvitationListQuery) ([]*domain.Invitation, error)
	InviteFunc func(ctx context.Context, caller *service.Caller, req *dto.CreateInvitationRequest) (*domain.Invitation, error)
	DeleteFunc func(ctx context.Context, caller *service.Caller, id string) error
}

func (m *MockInvitationService) List(ctx context.Context, caller *service.Caller, q *dto.InvitationListQuery) ([]*domain.Invitation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, caller, q)
	}
	return []*domain.Invitation{}, nil
}

func (m *MockInvitationService) Invite(ctx context.Context, caller *service.Caller, req *dto.CreateInvitationRequest) (*domain.Invitation, error) {
	if m.InviteFunc != nil {
		return m.InviteFunc(ctx, caller, req)
	}
	return nil, nil
}

func (m *MockInvitationService) Delete(ctx context.Context, caller *service.Caller, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, caller, id)
	}
	return nil
}

// MockNotificationService is a mock implementation of NotificationService for testing
type MockNotificationService struct {
	ListFunc     func(ctx context.Context, userID string, q *dto.NotificationListQuery) ([]*domain.Notification, error)
	MarkReadFunc func(ctx context.Context, userID string, req *dto.MarkReadRequest) (*dto.MarkReadResponse, error)
}

func (m *MockNotificationService) List(ctx context.Context, userID string, q *dto.NotificationListQuery) ([]*domain.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, q)
	}
	return []*domain.Notification{}, nil
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID string, req *dto.MarkReadRequest) (*dto.MarkReadResponse, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, req)
	}
	return &dto.MarkReadResponse{}, nil
}

func (m *MockNotificationService) Notify(ctx context.Context, userIDs []string, eventID string, kind domain.NotificationKind, message string) {
}

// MockWishlistService is a mock implementation of WishlistService for testing
type MockWishlistService struct {
	ListFunc   func(ctx context.Context, userID string) ([]*domain.WishListItem, error)
	AddFunc    func(ctx context.Context, userID, eventID string) (*domain.WishListItem, error)
	RemoveFunc func(ctx context.Context, userID, eventID string) error
}

func (m *MockWishlistService) List(ctx context.Context, userID string) ([]*domain.WishListItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []*domain.WishListItem{}, nil
}

func (m *MockWishlistService) Add(ctx context.Context, userID, eventID string) (*domain.WishListItem, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, userID, eventID)
	}
	return nil, nil
}

func (m *MockWishlistService) Remove(ctx context.Context, userID, eventID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, userID, eventID)
	}
	return nil
}
