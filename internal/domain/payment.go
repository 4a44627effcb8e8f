package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a payment row
type PaymentStatus string

const (
	PaymentStatusSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusInProgress PaymentStatus = "IN_PROGRESS"
	// PaymentStatusRefund marks a row that returns money for RefundOf
	PaymentStatusRefund PaymentStatus = "REFUND"
)

// Payment is a charge or a refund
type Payment struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	EventID       string        `json:"event_id"`
	Amount        float64       `json:"amount"`
	Discount      float64       `json:"discount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	Gateway       string        `json:"gateway"`
	GatewayRef    string        `json:"gateway_ref,omitempty"`
	CardLast4     string        `json:"card_last4,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
	RefundOf      *string       `json:"refund_of,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewPayment starts an IN_PROGRESS charge
func NewPayment(userID, eventID string, amount, discount float64, currency string) (*Payment, error) {
	if userID == "" || eventID == "" {
		return nil, errors.New("user and event are required")
	}
	if amount < 0 {
		return nil, errors.New("amount cannot be negative")
	}

	now := time.Now().UTC()
	return &Payment{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		Amount:    RoundMoney(amount),
		Discount:  RoundMoney(discount),
		Currency:  currency,
		Status:    PaymentStatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Complete marks an in-progress payment successful
func (p *Payment) Complete(gatewayRef string) error {
	if p.Status != PaymentStatusInProgress {
		return ErrInvalidPaymentState
	}
	p.Status = PaymentStatusSuccessful
	p.GatewayRef = gatewayRef
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail marks an in-progress payment failed
func (p *Payment) Fail(reason string) error {
	if p.Status != PaymentStatusInProgress {
		return ErrInvalidPaymentState
	}
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// NewRefund creates the REFUND row that offsets a successful payment
func (p *Payment) NewRefund(gatewayRef string) (*Payment, error) {
	if p.Status != PaymentStatusSuccessful {
		return nil, ErrInvalidPaymentState
	}

	now := time.Now().UTC()
	original := p.ID
	return &Payment{
		ID:         uuid.New().String(),
		UserID:     p.UserID,
		EventID:    p.EventID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Status:     PaymentStatusRefund,
		Gateway:    p.Gateway,
		GatewayRef: gatewayRef,
		CardLast4:  p.CardLast4,
		RefundOf:   &original,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsSuccessful reports whether money was captured
func (p *Payment) IsSuccessful() bool {
	return p.Status == PaymentStatusSuccessful
}

// Price computes gross, discount and net for a ticket purchase.
// discountPercent is clamped to [0,100].
func Price(unitPrice float64, tickets int, discountPercent float64) (gross, discount, net float64) {
	discountPercent = math.Max(0, math.Min(100, discountPercent))
	gross = RoundMoney(unitPrice * float64(tickets))
	discount = RoundMoney(gross * discountPercent / 100)
	net = RoundMoney(gross - discount)
	return gross, discount, net
}

// RoundMoney rounds to cents
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
