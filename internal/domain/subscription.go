package domain

import "time"

// Subscription is a user's booking of tickets for an event
type Subscription struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	EventID     string     `json:"event_id"`
	PaymentID   *string    `json:"payment_id"`
	Tickets     int        `json:"tickets"`
	IsCancelled bool       `json:"is_cancelled"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Balance is the net amount paid by a user for an event
type Balance struct {
	EventID    string  `json:"event_id"`
	Successful float64 `json:"successful"`
	Refunded   float64 `json:"refunded"`
	Total      float64 `json:"total"`
}

// NewBalance computes the running balance from aggregates
func NewBalance(eventID string, successful, refunded float64) *Balance {
	return &Balance{
		EventID:    eventID,
		Successful: successful,
		Refunded:   refunded,
		Total:      successful - refunded,
	}
}
