package domain

import "time"

// WishListItem marks an event a user saved; removal is a soft delete
type WishListItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Event     *Event    `json:"event,omitempty"`
}
