package gateway

import (
	"context"
	"fmt"
)

// ChargeRequest is a card charge for a payment row
type ChargeRequest struct {
	PaymentID   string
	Amount      float64
	Currency    string
	CardToken   string
	Description string
	Metadata    map[string]string
}

// ChargeResponse is the outcome of a charge. A declined card is not an
// error; Success is false and FailureReason is set.
type ChargeResponse struct {
	Success       bool
	TransactionID string
	Status        string
	FailureReason string
	FailureCode   string
}

// PaymentGateway charges and refunds cards
type PaymentGateway interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)
	// Refund returns amount to the card charged by transactionID and
	// returns the refund reference
	Refund(ctx context.Context, transactionID string, amount float64) (string, error)
	Name() string
}

// Config selects and configures a gateway
type Config struct {
	Provider        string
	StripeSecretKey string
	MockSuccessRate float64
	MockDelayMs     int
}

// New builds the gateway named by cfg.Provider
func New(cfg *Config) (PaymentGateway, error) {
	switch cfg.Provider {
	case "", "mock":
		return NewMockGateway(&MockGatewayConfig{
			SuccessRate: cfg.MockSuccessRate,
			DelayMs:     cfg.MockDelayMs,
		}), nil
	case "stripe":
		return NewStripeGateway(&StripeGatewayConfig{SecretKey: cfg.StripeSecretKey})
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.Provider)
	}
}

// toMinorUnits converts an amount to the smallest currency unit
func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
