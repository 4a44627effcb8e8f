package dto

// CreatePaymentRequest is the body of POST /payment/
type CreatePaymentRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
	Tickets int    `json:"tickets" binding:"required,gt=0"`
	CardDetails
}
