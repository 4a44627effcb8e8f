package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// declinedToken always fails, letting clients exercise the failure path
const declinedToken = "tok_chargeDeclined"

type mockTransaction struct {
	amount   float64
	refunded bool
}

// MockGateway implements PaymentGateway in memory
type MockGateway struct {
	config       *MockGatewayConfig
	transactions sync.Map
	mu           sync.Mutex
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	// SuccessRate is the probability of a successful charge (0.0 to 1.0)
	SuccessRate float64

	// DelayMs is the simulated processing delay in milliseconds
	DelayMs int

	FailureReasons []string
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		SuccessRate: 1,
		FailureReasons: []string{
			"insufficient_funds",
			"card_declined",
			"expired_card",
		},
	}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	if config.SuccessRate < 0 {
		config.SuccessRate = 0
	}
	if config.SuccessRate > 1 {
		config.SuccessRate = 1
	}
	if len(config.FailureReasons) == 0 {
		config.FailureReasons = DefaultMockGatewayConfig().FailureReasons
	}
	return &MockGateway{config: config}
}

func (g *MockGateway) wait(ctx context.Context) error {
	if g.config.DelayMs <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(g.config.DelayMs) * time.Millisecond):
		return nil
	}
}

// Charge processes a mock charge
func (g *MockGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("charge request is required")
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	transactionID := fmt.Sprintf("mock_txn_%s", uuid.New().String()[:8])
	resp := &ChargeResponse{TransactionID: transactionID}

	if req.CardToken == declinedToken || rand.Float64() >= g.config.SuccessRate {
		resp.Status = "failed"
		resp.FailureReason = g.config.FailureReasons[rand.Intn(len(g.config.FailureReasons))]
		resp.FailureCode = resp.FailureReason
		return resp, nil
	}

	g.transactions.Store(transactionID, &mockTransaction{amount: req.Amount})
	resp.Success = true
	resp.Status = "succeeded"
	return resp, nil
}

// Refund refunds a previous mock charge
func (g *MockGateway) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	if transactionID == "" {
		return "", fmt.Errorf("transaction ID is required")
	}
	if err := g.wait(ctx); err != nil {
		return "", err
	}

	v, ok := g.transactions.Load(transactionID)
	if !ok {
		return "", fmt.Errorf("transaction not found: %s", transactionID)
	}
	txn := v.(*mockTransaction)

	g.mu.Lock()
	defer g.mu.Unlock()
	if txn.refunded {
		return "", fmt.Errorf("transaction already refunded: %s", transactionID)
	}
	if amount > txn.amount {
		return "", fmt.Errorf("refund %.2f exceeds charge %.2f", amount, txn.amount)
	}
	txn.refunded = true

	return fmt.Sprintf("mock_re_%s", uuid.New().String()[:8]), nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}
