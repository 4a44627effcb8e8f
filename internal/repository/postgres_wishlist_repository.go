package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventhub/internal/domain"
)

// PostgresWishlistRepository implements WishlistRepository using PostgreSQL
type PostgresWishlistRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWishlistRepository creates a new PostgresWishlistRepository
func NewPostgresWishlistRepository(pool *pgxpool.Pool) *PostgresWishlistRepository {
	return &PostgresWishlistRepository{pool: pool}
}

// Add inserts the entry or revives a soft-deleted one
func (r *PostgresWishlistRepository) Add(ctx context.Context, item *domain.WishListItem) error {
	query := `
		INSERT INTO wishlist (id, user_id, event_id, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		ON CONFLICT (user_id, event_id) DO UPDATE
		SET is_deleted = FALSE, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, item.ID, item.UserID, item.EventID).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	item.IsDeleted = false
	return nil
}

// Remove soft-deletes an active entry
func (r *PostgresWishlistRepository) Remove(ctx context.Context, userID, eventID string) (bool, error) {
	query := `
		UPDATE wishlist SET is_deleted = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND event_id = $2 AND NOT is_deleted
	`
	tag, err := r.pool.Exec(ctx, query, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive returns the user's entries joined with their events
func (r *PostgresWishlistRepository) ListActive(ctx context.Context, userID string) ([]*domain.WishListItem, error) {
	query := `
		SELECT w.id, w.user_id, w.event_id, w.created_at, w.updated_at, ` + eventColumns + `
		FROM wishlist w
		JOIN events e ON e.id = w.event_id
		WHERE w.user_id = $1 AND NOT w.is_deleted
		ORDER BY w.updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.WishListItem, 0)
	for rows.Next() {
		item := &domain.WishListItem{Event: &domain.Event{}}
		dest := append([]any{&item.ID, &item.UserID, &item.EventID, &item.CreatedAt, &item.UpdatedAt}, eventDest(item.Event)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
