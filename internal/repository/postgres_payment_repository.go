package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/pkg/database"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

const paymentColumns = `id, user_id, event_id, amount, discount, currency, status, gateway,
	gateway_ref, card_last4, failure_reason, refund_of, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.EventID,
		&p.Amount,
		&p.Discount,
		&p.Currency,
		&p.Status,
		&p.Gateway,
		&p.GatewayRef,
		&p.CardLast4,
		&p.FailureReason,
		&p.RefundOf,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func insertPayment(ctx context.Context, db database.DBTX, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, event_id, amount, discount, currency, status, gateway,
			gateway_ref, card_last4, failure_reason, refund_of, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := db.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.EventID,
		p.Amount,
		p.Discount,
		p.Currency,
		p.Status,
		p.Gateway,
		p.GatewayRef,
		p.CardLast4,
		p.FailureReason,
		p.RefundOf,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// Create inserts a payment row
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return insertPayment(ctx, r.pool, payment)
}

// UpdateStatus persists a status transition
func (r *PostgresPaymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, gateway_ref = $3, failure_reason = $4, updated_at = $5
		WHERE id = $1
	`
	if payment.UpdatedAt.IsZero() {
		payment.UpdatedAt = time.Now()
	}
	tag, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.Status,
		payment.GatewayRef,
		payment.FailureReason,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// GetByID retrieves a payment by ID
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListByUser returns the user's payments and refunds, newest first
func (r *PostgresPaymentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
