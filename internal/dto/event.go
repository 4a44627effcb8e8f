package dto

import (
	"time"

	"github.com/prohmpiriya/eventhub/internal/domain"
)

// CreateEventRequest is the body of POST /core/event/
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=5000"`
	Location    string    `json:"location" binding:"max=300"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
	Capacity    int       `json:"capacity" binding:"required,gt=0"`
	TicketPrice float64   `json:"ticket_price" binding:"gte=0"`
}

// UpdateEventRequest patches an event
type UpdateEventRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Location    *string    `json:"location" binding:"omitempty,max=300"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Capacity    *int       `json:"capacity" binding:"omitempty,gt=0"`
	TicketPrice *float64   `json:"ticket_price" binding:"omitempty,gte=0"`
}

// EventListQuery are the query parameters of GET /core/event/
type EventListQuery struct {
	Search           string `form:"search"`
	OrganizerID      string `form:"organizer_id" binding:"omitempty,uuid"`
	Mine             bool   `form:"mine"`
	Upcoming         bool   `form:"upcoming"`
	Available        bool   `form:"available"`
	IncludeCancelled bool   `form:"include_cancelled"`
	Limit            int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset           int    `form:"offset" binding:"omitempty,min=0"`
}

// EventListResponse is a page of annotated events
type EventListResponse struct {
	Items  []*domain.EventView `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
