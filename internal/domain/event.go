package domain

import (
	"strings"
	"time"
)

// Event is something users can subscribe to
type Event struct {
	ID          string    `json:"id"`
	OrganizerID string    `json:"organizer_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Capacity    int       `json:"capacity"`
	SoldTickets int       `json:"sold_tickets"`
	TicketPrice float64   `json:"ticket_price"`
	IsCancelled bool      `json:"is_cancelled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RemainingTickets returns capacity minus sold tickets
func (e *Event) RemainingTickets() int {
	if r := e.Capacity - e.SoldTickets; r > 0 {
		return r
	}
	return 0
}

// IsFree reports whether subscribing needs no payment
func (e *Event) IsFree() bool {
	return e.TicketPrice <= 0
}

// HasStarted reports whether the event started before now
func (e *Event) HasStarted(now time.Time) bool {
	return !e.StartAt.After(now)
}

// CanOrganize reports whether the caller may modify the event
func (e *Event) CanOrganize(userID string, role Role) bool {
	return role == RoleAdmin || e.OrganizerID == userID
}

// CheckAvailability validates that tickets can be sold now
func (e *Event) CheckAvailability(tickets int, now time.Time) error {
	if tickets < 1 {
		return ErrInvalidTickets
	}
	if e.IsCancelled {
		return ErrEventCancelled
	}
	if e.HasStarted(now) {
		return ErrEventStarted
	}
	if e.RemainingTickets() < tickets {
		return ErrNotEnoughTickets
	}
	return nil
}

// Validate checks the invariants of a new or edited event
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrInvalidEventName
	}
	if !e.EndAt.After(e.StartAt) {
		return ErrInvalidEventDates
	}
	if e.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if e.Capacity < e.SoldTickets {
		return ErrCapacityBelowSold
	}
	if e.TicketPrice < 0 {
		return ErrInvalidTicketPrice
	}
	return nil
}

// EventView is an event annotated for a particular caller
type EventView struct {
	Event
	RemainingTickets int  `json:"remaining_tickets"`
	UserTickets      int  `json:"user_tickets"`
	IsWishlisted     bool `json:"is_wishlisted"`
}

// EventFilter narrows the event listing
type EventFilter struct {
	Search           string
	OrganizerID      string
	UpcomingOnly     bool
	AvailableOnly    bool
	IncludeCancelled bool
	ViewerID         string
	Limit            int
	Offset           int
}
