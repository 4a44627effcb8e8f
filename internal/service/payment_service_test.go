package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaymentService(event *domain.Event, discount float64, gw *MockGateway, payments *MockPaymentRepository) PaymentService {
	events := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			if event != nil && event.ID == id {
				return event, nil
			}
			return nil, domain.ErrEventNotFound
		},
	}
	invitations := &MockInvitationRepository{
		DiscountFunc: func(ctx context.Context, eventID, email string) (float64, error) {
			return discount, nil
		},
	}
	return NewPaymentService(payments, events, invitations, gw, &PaymentServiceConfig{})
}

func TestPaymentService_CreatePayment(t *testing.T) {
	gw := &MockGateway{}
	payments := NewMockPaymentRepository()
	svc := newTestPaymentService(futureEvent("event-1", 10, 0, 30), 10, gw, payments)

	payment, err := svc.CreatePayment(context.Background(), "user-1", "user@example.com", &dto.CreatePaymentRequest{
		EventID:     "event-1",
		Tickets:     3,
		CardDetails: dto.CardDetails{CardToken: "tok_visa", CardLast4: "4242"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusSuccessful, payment.Status)
	assert.Equal(t, 81.0, payment.Amount)
	assert.Equal(t, 9.0, payment.Discount)
	assert.Equal(t, "usd", payment.Currency)
	assert.Equal(t, "test", payment.Gateway)
	assert.NotEmpty(t, payment.GatewayRef)
	assert.Equal(t, 1, gw.Charges)

	stored, err := payments.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccessful, stored.Status)
}

func TestPaymentService_CreatePayment_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		event   *domain.Event
		req     *dto.CreatePaymentRequest
		charge  func(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResponse, error)
		wantErr error
	}{
		{
			name:    "unknown event",
			req:     &dto.CreatePaymentRequest{EventID: "missing", Tickets: 1},
			wantErr: domain.ErrUnknownEvent,
		},
		{
			name:    "free event",
			event:   futureEvent("event-1", 10, 0, 0),
			req:     &dto.CreatePaymentRequest{EventID: "event-1", Tickets: 1},
			wantErr: domain.ErrFreeEvent,
		},
		{
			name:    "sold out",
			event:   futureEvent("event-1", 10, 10, 30),
			req:     &dto.CreatePaymentRequest{EventID: "event-1", Tickets: 1},
			wantErr: domain.ErrNotEnoughTickets,
		},
		{
			name:  "declined",
			event: futureEvent("event-1", 10, 0, 30),
			req:   &dto.CreatePaymentRequest{EventID: "event-1", Tickets: 1},
			charge: func(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
				return &gateway.ChargeResponse{FailureReason: "insufficient_funds"}, nil
			},
			wantErr: domain.ErrPaymentFailed,
		},
		{
			name:  "gateway error",
			event: futureEvent("event-1", 10, 0, 30),
			req:   &dto.CreatePaymentRequest{EventID: "event-1", Tickets: 1},
			charge: func(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
				return nil, errors.New("connection reset")
			},
			wantErr: domain.ErrPaymentFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &MockGateway{ChargeFunc: tt.charge}
			svc := newTestPaymentService(tt.event, 0, gw, NewMockPaymentRepository())

			_, err := svc.CreatePayment(context.Background(), "user-1", "user@example.com", tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidationError(err))
		})
	}
}

func TestPaymentService_Charge_FullDiscountSkipsGateway(t *testing.T) {
	gw := &MockGateway{}
	svc := newTestPaymentService(nil, 100, gw, NewMockPaymentRepository())

	payment, err := svc.Charge(context.Background(), "user-1", "user@example.com", futureEvent("event-1", 10, 0, 30), 2, dto.CardDetails{})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusSuccessful, payment.Status)
	assert.Equal(t, 0.0, payment.Amount)
	assert.Equal(t, 60.0, payment.Discount)
	assert.Equal(t, "discount", payment.GatewayRef)
	assert.Equal(t, 0, gw.Charges)

	refund, err := svc.PrepareRefund(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefund, refund.Status)
	assert.Equal(t, 0, gw.Refunds)
}

func TestPaymentService_GetPayment(t *testing.T) {
	payments := NewMockPaymentRepository(&domain.Payment{ID: "payment-1", UserID: "user-1", Status: domain.PaymentStatusSuccessful})
	svc := newTestPaymentService(nil, 0, &MockGateway{}, payments)

	payment, err := svc.GetPayment(context.Background(), "payment-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "payment-1", payment.ID)

	_, err = svc.GetPayment(context.Background(), "payment-1", "user-2")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	_, err = svc.GetPayment(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestPaymentService_Refund(t *testing.T) {
	original := &domain.Payment{
		ID: "payment-1", UserID: "user-1", EventID: "event-1",
		Amount: 45, Status: domain.PaymentStatusSuccessful, Gateway: "test", GatewayRef: "txn_1",
	}
	payments := NewMockPaymentRepository(original)
	gw := &MockGateway{
		RefundFunc: func(ctx context.Context, transactionID string, amount float64) (string, error) {
			assert.Equal(t, "txn_1", transactionID)
			assert.Equal(t, 45.0, amount)
			return "re_1", nil
		},
	}
	svc := newTestPaymentService(nil, 0, gw, payments)

	refund, err := svc.Refund(context.Background(), original)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusRefund, refund.Status)
	assert.Equal(t, "re_1", refund.GatewayRef)
	assert.Equal(t, "payment-1", *refund.RefundOf)
	assert.Len(t, payments.byStatus(domain.PaymentStatusRefund), 1)

	list, err := svc.ListPayments(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPaymentService_Refund_GatewayFailure(t *testing.T) {
	original := &domain.Payment{ID: "payment-1", UserID: "user-1", Amount: 45, Status: domain.PaymentStatusSuccessful, GatewayRef: "txn_1"}
	payments := NewMockPaymentRepository(original)
	gw := &MockGateway{
		RefundFunc: func(ctx context.Context, transactionID string, amount float64) (string, error) {
			return "", errors.New("gateway down")
		},
	}
	svc := newTestPaymentService(nil, 0, gw, payments)

	_, err := svc.Refund(context.Background(), original)
	assert.Error(t, err)
	assert.Empty(t, payments.byStatus(domain.PaymentStatusRefund))
}
