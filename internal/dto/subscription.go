package dto

import "github.com/prohmpiriya/eventhub/internal/domain"

// CardDetails carries what the gateway needs to charge a card
type CardDetails struct {
	CardToken string `json:"card_token" binding:"omitempty"`
	CardLast4 string `json:"card_last4" binding:"omitempty,len=4,numeric"`
}

// CreateSubscriptionRequest is the body of POST /core/subscription/.
// Paid events need either a PaymentID made with POST /payment/ or card details.
type CreateSubscriptionRequest struct {
	EventID   string `json:"event_id" binding:"required,uuid"`
	Tickets   int    `json:"tickets" binding:"required,gt=0"`
	PaymentID string `json:"payment_id" binding:"omitempty,uuid"`
	CardDetails
}

// SubscriptionListQuery are the query parameters of GET /core/subscription/
type SubscriptionListQuery struct {
	EventID          string `form:"event_id" binding:"omitempty,uuid"`
	IncludeCancelled bool   `form:"include_cancelled"`
}

// SubscriptionResponse is returned after subscribing or cancelling
type SubscriptionResponse struct {
	Subscription *domain.Subscription `json:"subscription"`
	Payment      *domain.Payment      `json:"payment,omitempty"`
	Balance      *domain.Balance      `json:"balance,omitempty"`
}
