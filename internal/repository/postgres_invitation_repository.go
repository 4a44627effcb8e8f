package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventhub/internal/domain"
)

// PostgresInvitationRepository implements InvitationRepository using PostgreSQL
type PostgresInvitationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInvitationRepository creates a new PostgresInvitationRepository
func NewPostgresInvitationRepository(pool *pgxpool.Pool) *PostgresInvitationRepository {
	return &PostgresInvitationRepository{pool: pool}
}

const invitationColumns = `i.id, i.event_id, i.email, i.user_id, i.discount, i.message, i.created_by, i.created_at, i.updated_at`

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := row.Scan(
		&inv.ID,
		&inv.EventID,
		&inv.Email,
		&inv.UserID,
		&inv.Discount,
		&inv.Message,
		&inv.CreatedBy,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func collectInvitations(rows pgx.Rows) ([]*domain.Invitation, error) {
	defer rows.Close()
	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// Upsert updates the invitation for (event_id, email) or creates it
func (r *PostgresInvitationRepository) Upsert(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (id, event_id, email, user_id, discount, message, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (event_id, email) DO UPDATE
		SET user_id = COALESCE(EXCLUDED.user_id, invitations.user_id),
			discount = EXCLUDED.discount,
			message = EXCLUDED.message,
			updated_at = NOW()
		RETURNING id, user_id, created_by, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		inv.ID,
		inv.EventID,
		inv.Email,
		inv.UserID,
		inv.Discount,
		inv.Message,
		inv.CreatedBy,
	).Scan(&inv.ID, &inv.UserID, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert invitation: %w", err)
	}
	return nil
}

// GetByID retrieves an invitation by ID
func (r *PostgresInvitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations i WHERE i.id = $1`
	inv, err := scanInvitation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// Delete removes an invitation
func (r *PostgresInvitationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

// ListByOrganizer lists invitations for events owned by organizerID
func (r *PostgresInvitationRepository) ListByOrganizer(ctx context.Context, organizerID, eventID string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		JOIN events e ON e.id = i.event_id
		WHERE ($1 = '' OR e.organizer_id::text = $1)
			AND ($2 = '' OR i.event_id::text = $2)
		ORDER BY i.updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, organizerID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return collectInvitations(rows)
}

// ListForUser lists invitations addressed to the user or their email
func (r *PostgresInvitationRepository) ListForUser(ctx context.Context, userID, email string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		WHERE i.user_id::text = $1 OR i.email = $2
		ORDER BY i.updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return collectInvitations(rows)
}

// Discount returns the invitation discount for an email, 0 when not invited
func (r *PostgresInvitationRepository) Discount(ctx context.Context, eventID, email string) (float64, error) {
	query := `SELECT discount FROM invitations WHERE event_id = $1 AND email = $2`
	var discount float64
	err := r.pool.QueryRow(ctx, query, eventID, email).Scan(&discount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get invitation discount: %w", err)
	}
	return discount, nil
}

// LinkUser attaches userID to invitations sent to email before they registered
func (r *PostgresInvitationRepository) LinkUser(ctx context.Context, email, userID string) error {
	query := `UPDATE invitations SET user_id = $2, updated_at = NOW() WHERE email = $1 AND user_id IS NULL`
	if _, err := r.pool.Exec(ctx, query, email, userID); err != nil {
		return fmt.Errorf("failed to link invitations: %w", err)
	}
	return nil
}
