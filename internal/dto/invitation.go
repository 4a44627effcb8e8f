package dto

// CreateInvitationRequest is the body of POST /core/invite/
type CreateInvitationRequest struct {
	EventID  string  `json:"event_id" binding:"required,uuid"`
	Email    string  `json:"email" binding:"required,email"`
	Discount float64 `json:"discount" binding:"gte=0,lte=100"`
	Message  string  `json:"message" binding:"max=1000"`
}

// InvitationListQuery are the query parameters of GET /core/invite/
type InvitationListQuery struct {
	EventID string `form:"event_id" binding:"omitempty,uuid"`
}
