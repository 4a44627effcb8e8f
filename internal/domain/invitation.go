package domain

import (
	"net/mail"
	"time"
)

// Invitation grants a discount on an event to an email address
type Invitation struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Email     string    `json:"email"`
	UserID    *string   `json:"user_id"`
	Discount  float64   `json:"discount"`
	Message   string    `json:"message"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate normalizes the email and checks the discount range
func (i *Invitation) Validate() error {
	i.Email = NormalizeEmail(i.Email)
	if _, err := mail.ParseAddress(i.Email); err != nil {
		return ErrInvalidEmail
	}
	if i.Discount < 0 || i.Discount > 100 {
		return ErrInvalidDiscount
	}
	return nil
}
