package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/metrics"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SubscriptionService books tickets and reconciles their payments
type SubscriptionService interface {
	// Subscribe validates capacity, takes payment for paid events, stores
	// the subscription and returns the caller's balance for the event
	Subscribe(ctx context.Context, caller *Caller, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	List(ctx context.Context, userID string, q *dto.SubscriptionListQuery) ([]*domain.Subscription, error)
	// Cancel refunds the payment, releases the tickets and returns the new balance
	Cancel(ctx context.Context, caller *Caller, id string) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	eventRepo        repository.EventRepository
	paymentRepo      repository.PaymentRepository
	payments         PaymentService
	notifications    NotificationService
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	eventRepo repository.EventRepository,
	paymentRepo repository.PaymentRepository,
	payments PaymentService,
	notifications NotificationService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		eventRepo:        eventRepo,
		paymentRepo:      paymentRepo,
		payments:         payments,
		notifications:    notifications,
	}
}

// Subscribe handles POST /core/subscription/
func (s *subscriptionService) Subscribe(ctx context.Context, caller *Caller, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.subscription.subscribe")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", caller.UserID),
		attribute.String("event_id", req.EventID),
		attribute.Int("tickets", req.Tickets),
	)

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrUnknownEvent
		}
		return nil, telemetry.RecordError(span, err)
	}
	if err := event.CheckAvailability(req.Tickets, now()); err != nil {
		metrics.RecordSubscription("rejected", req.Tickets)
		return nil, err
	}

	var (
		payment *domain.Payment
		charged bool
	)
	if !event.IsFree() {
		payment, charged, err = s.takePayment(ctx, caller, event, req)
		if err != nil {
			metrics.RecordSubscription("payment_failed", req.Tickets)
			return nil, telemetry.RecordError(span, err)
		}
		span.SetAttributes(attribute.String("payment_id", payment.ID))
	}

	sub := &domain.Subscription{
		ID:        uuid.New().String(),
		UserID:    caller.UserID,
		EventID:   event.ID,
		Tickets:   req.Tickets,
		CreatedAt: now().UTC(),
	}
	if payment != nil {
		sub.PaymentID = &payment.ID
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		if charged {
			s.compensate(ctx, payment)
		}
		metrics.RecordSubscription("rejected", req.Tickets)
		return nil, telemetry.RecordError(span, err)
	}
	metrics.RecordSubscription("created", sub.Tickets)

	s.notifications.Notify(ctx, []string{caller.UserID}, event.ID, domain.NotificationSubscribed,
		fmt.Sprintf("You booked %d ticket(s) for %s", sub.Tickets, event.Name))

	resp := &dto.SubscriptionResponse{Subscription: sub, Payment: payment}
	if payment != nil {
		resp.Balance, err = s.subscriptionRepo.Balance(ctx, caller.UserID, event.ID)
		if err != nil {
			return nil, telemetry.RecordError(span, err)
		}
	}
	return resp, nil
}

// takePayment uses the referenced payment or charges the card inline.
// charged reports whether a new charge was made by this call.
func (s *subscriptionService) takePayment(ctx context.Context, caller *Caller, event *domain.Event, req *dto.CreateSubscriptionRequest) (*domain.Payment, bool, error) {
	if req.PaymentID != "" {
		payment, err := s.usablePayment(ctx, caller, event, req)
		return payment, false, err
	}
	if req.CardToken == "" && req.CardLast4 == "" {
		return nil, false, domain.ErrPaymentRequired
	}

	payment, err := s.payments.Charge(ctx, caller.UserID, caller.Email, event, req.Tickets, req.CardDetails)
	if err != nil {
		return nil, false, err
	}
	if !payment.IsSuccessful() {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrPaymentFailed, payment.FailureReason)
	}
	return payment, true, nil
}

// usablePayment checks a pre-made payment belongs to the caller and event,
// succeeded, covers the tickets and is not attached to another subscription
func (s *subscriptionService) usablePayment(ctx context.Context, caller *Caller, event *domain.Event, req *dto.CreateSubscriptionRequest) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, domain.ErrPaymentNotUsable
		}
		return nil, err
	}
	if payment.UserID != caller.UserID || payment.EventID != event.ID || !payment.IsSuccessful() {
		return nil, domain.ErrPaymentNotUsable
	}

	_, net, err := s.payments.Quote(ctx, caller.Email, event, req.Tickets)
	if err != nil {
		return nil, err
	}
	if payment.Amount+0.005 < net {
		return nil, fmt.Errorf("%w: amount %.2f does not cover %.2f", domain.ErrPaymentNotUsable, payment.Amount, net)
	}

	used, err := s.subscriptionRepo.IsPaymentUsed(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, domain.ErrPaymentNotUsable
	}
	return payment, nil
}

// compensate refunds a charge whose subscription could not be stored
func (s *subscriptionService) compensate(ctx context.Context, payment *domain.Payment) {
	if _, err := s.payments.Refund(context.WithoutCancel(ctx), payment); err != nil {
		logger.WithContext(ctx).Error("failed to refund payment after subscription failure",
			zap.String("payment_id", payment.ID),
			zap.Error(err),
		)
	}
}

// List returns the caller's subscriptions
func (s *subscriptionService) List(ctx context.Context, userID string, q *dto.SubscriptionListQuery) ([]*domain.Subscription, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.subscription.list")
	defer span.End()

	subs, err := s.subscriptionRepo.ListByUser(ctx, userID, q.EventID, q.IncludeCancelled)
	return subs, telemetry.RecordError(span, err)
}

// Cancel handles POST /core/subscription/:id/cancel
func (s *subscriptionService) Cancel(ctx context.Context, caller *Caller, id string) (*dto.SubscriptionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.subscription.cancel")
	defer span.End()

	sub, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if sub.UserID != caller.UserID {
		return nil, domain.ErrForbidden
	}
	if sub.IsCancelled {
		return nil, domain.ErrSubscriptionCancelled
	}

	event, err := s.eventRepo.GetByID(ctx, sub.EventID)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if !event.IsCancelled && event.HasStarted(now()) {
		return nil, domain.ErrEventStarted
	}

	var (
		payment  *domain.Payment
		refund   *domain.Payment
		refundFn repository.RefundFunc
	)
	if sub.PaymentID != nil {
		payment, err = s.paymentRepo.GetByID(ctx, *sub.PaymentID)
		if err != nil {
			return nil, telemetry.RecordError(span, err)
		}
		if payment.IsSuccessful() {
			refundFn = func(ctx context.Context) (*domain.Payment, error) {
				r, err := s.payments.PrepareRefund(ctx, payment)
				refund = r
				return r, err
			}
		}
	}

	// the gateway is only called after the cancellation is claimed
	if err := s.subscriptionRepo.Cancel(ctx, sub, refundFn); err != nil {
		if refund != nil {
			logger.WithContext(ctx).Error("refund issued but subscription cancel failed",
				zap.String("subscription_id", sub.ID),
				zap.String("payment_id", payment.ID),
				zap.String("gateway_ref", refund.GatewayRef),
				zap.Error(err),
			)
		}
		return nil, telemetry.RecordError(span, err)
	}
	metrics.RecordSubscription("cancelled", sub.Tickets)

	if refund != nil {
		s.notifications.Notify(ctx, []string{caller.UserID}, event.ID, domain.NotificationRefunded,
			fmt.Sprintf("Your booking for %s was cancelled and %.2f refunded", event.Name, refund.Amount))
	}

	resp := &dto.SubscriptionResponse{Subscription: sub, Payment: refund}
	if payment != nil {
		resp.Balance, err = s.subscriptionRepo.Balance(ctx, caller.UserID, event.ID)
		if err != nil {
			return nil, telemetry.RecordError(span, err)
		}
	}
	return resp, nil
}
