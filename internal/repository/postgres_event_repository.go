package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventhub/internal/domain"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `e.id, e.organizer_id, e.name, e.description, e.location, e.start_at, e.end_at,
	e.capacity, e.sold_tickets, e.ticket_price, e.is_cancelled, e.created_at, e.updated_at`

func eventDest(e *domain.Event) []any {
	return []any{
		&e.ID,
		&e.OrganizerID,
		&e.Name,
		&e.Description,
		&e.Location,
		&e.StartAt,
		&e.EndAt,
		&e.Capacity,
		&e.SoldTickets,
		&e.TicketPrice,
		&e.IsCancelled,
		&e.CreatedAt,
		&e.UpdatedAt,
	}
}

// Create creates a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, organizer_id, name, description, location, start_at, end_at,
			capacity, sold_tickets, ticket_price, is_cancelled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Name,
		event.Description,
		event.Location,
		event.StartAt,
		event.EndAt,
		event.Capacity,
		event.SoldTickets,
		event.TicketPrice,
		event.IsCancelled,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	event := &domain.Event{}
	if err := r.pool.QueryRow(ctx, query, id).Scan(eventDest(event)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// Update writes the editable fields of an event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET name = $2, description = $3, location = $4, start_at = $5, end_at = $6,
			capacity = $7, ticket_price = $8, updated_at = $9
		WHERE id = $1
	`
	event.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Location,
		event.StartAt,
		event.EndAt,
		event.Capacity,
		event.TicketPrice,
		event.UpdatedAt,
	)
	if err != nil {
		// sold_tickets may have grown since the caller read the row
		if isCheckViolation(err, "events_sold_check") {
			return domain.ErrCapacityBelowSold
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Cancel marks an event cancelled
func (r *PostgresEventRepository) Cancel(ctx context.Context, id string) error {
	query := `UPDATE events SET is_cancelled = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_cancelled`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventAlreadyCancelled
	}
	return nil
}

// viewSelect annotates events for the viewer bound to $1
const viewSelect = `
	SELECT ` + eventColumns + `,
		GREATEST(e.capacity - e.sold_tickets, 0) AS remaining_tickets,
		COALESCE((
			SELECT SUM(s.tickets) FROM subscriptions s
			WHERE s.event_id = e.id AND s.user_id::text = $1 AND NOT s.is_cancelled
		), 0) AS user_tickets,
		EXISTS (
			SELECT 1 FROM wishlist w
			WHERE w.event_id = e.id AND w.user_id::text = $1 AND NOT w.is_deleted
		) AS is_wishlisted
	FROM events e`

func scanView(row pgx.Row) (*domain.EventView, error) {
	v := &domain.EventView{}
	dest := append(eventDest(&v.Event), &v.RemainingTickets, &v.UserTickets, &v.IsWishlisted)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return v, nil
}

// GetView returns a single event annotated for the viewer
func (r *PostgresEventRepository) GetView(ctx context.Context, id, viewerID string) (*domain.EventView, error) {
	query := viewSelect + ` WHERE e.id = $2`
	v, err := scanView(r.pool.QueryRow(ctx, query, viewerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event view: %w", err)
	}
	return v, nil
}

// buildEventWhere renders the filter as a WHERE clause whose placeholders
// start after the first skip arguments
func buildEventWhere(f *domain.EventFilter, now time.Time, skip int) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", skip+len(args))))
	}

	if !f.IncludeCancelled {
		conds = append(conds, "NOT e.is_cancelled")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("e.name ILIKE ?", "%"+escapeLike(s)+"%")
	}
	if f.OrganizerID != "" {
		add("e.organizer_id::text = ?", f.OrganizerID)
	}
	if f.UpcomingOnly {
		add("e.start_at > ?", now)
	}
	if f.AvailableOnly {
		conds = append(conds, "e.capacity > e.sold_tickets")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns a page of annotated events and the total matching count
func (r *PostgresEventRepository) List(ctx context.Context, filter *domain.EventFilter) ([]*domain.EventView, int, error) {
	now := time.Now()

	where, args := buildEventWhere(filter, now, 0)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	where, args = buildEventWhere(filter, now, 1)
	args = append([]any{filter.ViewerID}, args...)
	args = append(args, filter.Limit, filter.Offset)
	query := viewSelect + where + fmt.Sprintf(` ORDER BY e.start_at ASC, e.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	views := make([]*domain.EventView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate events: %w", err)
	}
	return views, total, nil
}

// SubscriberIDs returns the distinct users with an active subscription
func (r *PostgresEventRepository) SubscriberIDs(ctx context.Context, eventID string) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM subscriptions WHERE event_id = $1 AND NOT is_cancelled`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscribers: %w", err)
	}
	return ids, nil
}
