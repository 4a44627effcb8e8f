package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/gateway"
	"github.com/prohmpiriya/eventhub/internal/metrics"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PaymentServiceConfig holds configuration for PaymentService
type PaymentServiceConfig struct {
	Currency string
}

// PaymentService charges tickets and refunds them
type PaymentService interface {
	// CreatePayment prices tickets for the caller and charges the card
	CreatePayment(ctx context.Context, userID, email string, req *dto.CreatePaymentRequest) (*domain.Payment, error)
	// Quote prices tickets for email, applying any invitation discount
	Quote(ctx context.Context, email string, event *domain.Event, tickets int) (discount, net float64, err error)
	// Charge charges an already loaded event; the returned payment may be FAILED
	Charge(ctx context.Context, userID, email string, event *domain.Event, tickets int, card dto.CardDetails) (*domain.Payment, error)
	GetPayment(ctx context.Context, id, userID string) (*domain.Payment, error)
	ListPayments(ctx context.Context, userID string) ([]*domain.Payment, error)
	// PrepareRefund refunds through the gateway and returns the unsaved REFUND row
	PrepareRefund(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	// Refund refunds through the gateway and stores the REFUND row
	Refund(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
}

type paymentService struct {
	paymentRepo    repository.PaymentRepository
	eventRepo      repository.EventRepository
	invitationRepo repository.InvitationRepository
	gateway        gateway.PaymentGateway
	config         *PaymentServiceConfig
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	eventRepo repository.EventRepository,
	invitationRepo repository.InvitationRepository,
	gw gateway.PaymentGateway,
	config *PaymentServiceConfig,
) PaymentService {
	if config.Currency == "" {
		config.Currency = "usd"
	}
	return &paymentService{
		paymentRepo:    paymentRepo,
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		gateway:        gw,
		config:         config,
	}
}

// CreatePayment handles POST /payment/
func (s *paymentService) CreatePayment(ctx context.Context, userID, email string, req *dto.CreatePaymentRequest) (*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.create")
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrUnknownEvent
		}
		return nil, telemetry.RecordError(span, err)
	}
	if event.IsFree() {
		return nil, domain.ErrFreeEvent
	}
	if err := event.CheckAvailability(req.Tickets, now()); err != nil {
		return nil, err
	}

	payment, err := s.Charge(ctx, userID, email, event, req.Tickets, req.CardDetails)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if !payment.IsSuccessful() {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentFailed, payment.FailureReason)
	}
	return payment, nil
}

// Charge creates an IN_PROGRESS row, calls the gateway and records the outcome
func (s *paymentService) Charge(ctx context.Context, userID, email string, event *domain.Event, tickets int, card dto.CardDetails) (*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.charge")
	defer span.End()

	discount, net, err := s.Quote(ctx, email, event, tickets)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	payment, err := domain.NewPayment(userID, event.ID, net, discount, s.config.Currency)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	payment.Gateway = s.gateway.Name()
	payment.CardLast4 = card.CardLast4

	span.SetAttributes(
		attribute.String("payment_id", payment.ID),
		attribute.String("event_id", event.ID),
		attribute.Float64("amount", payment.Amount),
		attribute.Float64("discount", payment.Discount),
	)

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	if payment.Amount == 0 {
		// fully discounted, nothing to capture
		if err := payment.Complete("discount"); err != nil {
			return nil, telemetry.RecordError(span, err)
		}
	} else {
		resp, err := s.gateway.Charge(ctx, &gateway.ChargeRequest{
			PaymentID:   payment.ID,
			Amount:      payment.Amount,
			Currency:    payment.Currency,
			CardToken:   card.CardToken,
			Description: fmt.Sprintf("%d ticket(s) for %s", tickets, event.Name),
			Metadata:    map[string]string{"event_id": event.ID, "user_id": userID},
		})
		switch {
		case err != nil:
			_ = payment.Fail(err.Error())
		case resp.Success:
			_ = payment.Complete(resp.TransactionID)
		default:
			payment.GatewayRef = resp.TransactionID
			_ = payment.Fail(resp.FailureReason)
		}
	}

	if err := s.paymentRepo.UpdateStatus(ctx, payment); err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	metrics.RecordPayment(payment.Gateway, string(payment.Status), payment.Amount)
	span.SetAttributes(attribute.String("status", string(payment.Status)))
	return payment, nil
}

// Quote prices tickets for email
func (s *paymentService) Quote(ctx context.Context, email string, event *domain.Event, tickets int) (float64, float64, error) {
	discountPercent, err := s.invitationRepo.Discount(ctx, event.ID, domain.NormalizeEmail(email))
	if err != nil {
		return 0, 0, err
	}
	_, discount, net := domain.Price(event.TicketPrice, tickets, discountPercent)
	return discount, net, nil
}

// GetPayment returns a payment owned by userID
func (s *paymentService) GetPayment(ctx context.Context, id, userID string) (*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.get")
	defer span.End()

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if payment.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments returns the caller's payments and refunds
func (s *paymentService) ListPayments(ctx context.Context, userID string) ([]*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.list")
	defer span.End()

	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	return payments, telemetry.RecordError(span, err)
}

// PrepareRefund refunds through the gateway without storing the REFUND row
func (s *paymentService) PrepareRefund(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.refund")
	defer span.End()

	span.SetAttributes(attribute.String("payment_id", payment.ID))

	ref := "discount"
	if payment.Amount > 0 && payment.GatewayRef != "discount" {
		var err error
		ref, err = s.gateway.Refund(ctx, payment.GatewayRef, payment.Amount)
		if err != nil {
			return nil, telemetry.RecordError(span, fmt.Errorf("gateway refund failed: %w", err))
		}
	}

	refund, err := payment.NewRefund(ref)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	metrics.RecordPayment(refund.Gateway, string(refund.Status), refund.Amount)
	return refund, nil
}

// Refund refunds and stores the REFUND row
func (s *paymentService) Refund(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	refund, err := s.PrepareRefund(ctx, payment)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, refund); err != nil {
		logger.WithContext(ctx).Error("refund issued but not recorded",
			zap.String("payment_id", payment.ID),
			zap.String("gateway_ref", refund.GatewayRef),
			zap.Error(err),
		)
		return nil, err
	}
	return refund, nil
}
