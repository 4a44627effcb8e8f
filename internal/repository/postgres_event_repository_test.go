package repository

import (
	"testing"
	"time"

	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildEventWhere(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    *domain.EventFilter
		skip      int
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "default hides cancelled",
			filter:    &domain.EventFilter{},
			wantWhere: " WHERE NOT e.is_cancelled",
		},
		{
			name:      "include cancelled, no filters",
			filter:    &domain.EventFilter{IncludeCancelled: true},
			wantWhere: "",
		},
		{
			name: "all filters after viewer placeholder",
			filter: &domain.EventFilter{
				Search:        "go_100%",
				OrganizerID:   "org-1",
				UpcomingOnly:  true,
				AvailableOnly: true,
			},
			skip:      1,
			wantWhere: " WHERE NOT e.is_cancelled AND e.name ILIKE $2 AND e.organizer_id::text = $3 AND e.start_at > $4 AND e.capacity > e.sold_tickets",
			wantArgs:  []any{`%go\_100\%%`, "org-1", now},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildEventWhere(tt.filter, now, tt.skip)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
