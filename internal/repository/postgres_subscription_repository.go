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

// PostgresSubscriptionRepository implements SubscriptionRepository using PostgreSQL
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, user_id, event_id, payment_id, tickets, is_cancelled, cancelled_at, created_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	s := &domain.Subscription{}
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.EventID,
		&s.PaymentID,
		&s.Tickets,
		&s.IsCancelled,
		&s.CancelledAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// lockEvent reads the event row FOR UPDATE inside tx
func lockEvent(ctx context.Context, tx pgx.Tx, eventID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1 FOR UPDATE`
	event := &domain.Event{}
	if err := tx.QueryRow(ctx, query, eventID).Scan(eventDest(event)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}
	return event, nil
}

// Create inserts the subscription and increments sold_tickets atomically
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		event, err := lockEvent(ctx, tx, sub.EventID)
		if err != nil {
			return err
		}
		if err := event.CheckAvailability(sub.Tickets, time.Now()); err != nil {
			return err
		}

		query := `
			INSERT INTO subscriptions (id, user_id, event_id, payment_id, tickets, is_cancelled, created_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		`
		if _, err := tx.Exec(ctx, query, sub.ID, sub.UserID, sub.EventID, sub.PaymentID, sub.Tickets, sub.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrPaymentNotUsable
			}
			return fmt.Errorf("failed to insert subscription: %w", err)
		}

		update := `UPDATE events SET sold_tickets = sold_tickets + $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.Exec(ctx, update, sub.EventID, sub.Tickets); err != nil {
			return fmt.Errorf("failed to increment sold tickets: %w", err)
		}
		return nil
	})
}

// Cancel claims the subscription, refunds it, releases tickets and stores the refund
func (r *PostgresSubscriptionRepository) Cancel(ctx context.Context, sub *domain.Subscription, refund RefundFunc) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := lockEvent(ctx, tx, sub.EventID); err != nil {
			return err
		}

		query := `
			UPDATE subscriptions SET is_cancelled = TRUE, cancelled_at = NOW()
			WHERE id = $1 AND NOT is_cancelled
			RETURNING cancelled_at
		`
		var cancelledAt time.Time
		if err := tx.QueryRow(ctx, query, sub.ID).Scan(&cancelledAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrSubscriptionCancelled
			}
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}

		update := `UPDATE events SET sold_tickets = GREATEST(sold_tickets - $2, 0), updated_at = NOW() WHERE id = $1`
		if _, err := tx.Exec(ctx, update, sub.EventID, sub.Tickets); err != nil {
			return fmt.Errorf("failed to release tickets: %w", err)
		}

		if refund != nil {
			payment, err := refund(ctx)
			if err != nil {
				return err
			}
			if payment != nil {
				if err := insertPayment(ctx, tx, payment); err != nil {
					return err
				}
			}
		}

		sub.IsCancelled = true
		sub.CancelledAt = &cancelledAt
		return nil
	})
}

// GetByID retrieves a subscription by ID
func (r *PostgresSubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	s, err := scanSubscription(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return s, nil
}

// ListByUser lists a user's subscriptions, optionally for one event
func (r *PostgresSubscriptionRepository) ListByUser(ctx context.Context, userID, eventID string, includeCancelled bool) ([]*domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
			AND ($2 = '' OR event_id::text = $2)
			AND ($3 OR NOT is_cancelled)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, eventID, includeCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*domain.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Balance aggregates SUCCESSFUL minus REFUND payments attached to the
// user's subscriptions for the event, cancelled ones included
func (r *PostgresSubscriptionRepository) Balance(ctx context.Context, userID, eventID string) (*domain.Balance, error) {
	query := `
		WITH charged AS (
			SELECT payment_id FROM subscriptions
			WHERE user_id = $1 AND event_id = $2 AND payment_id IS NOT NULL
		)
		SELECT
			COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'SUCCESSFUL'), 0),
			COALESCE(SUM(p.amount) FILTER (WHERE p.status = 'REFUND'), 0)
		FROM payments p
		WHERE p.id IN (SELECT payment_id FROM charged)
			OR p.refund_of IN (SELECT payment_id FROM charged)
	`
	var successful, refunded float64
	if err := r.pool.QueryRow(ctx, query, userID, eventID).Scan(&successful, &refunded); err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return domain.NewBalance(eventID, successful, refunded), nil
}

// IsPaymentUsed reports whether a subscription already references the payment
func (r *PostgresSubscriptionRepository) IsPaymentUsed(ctx context.Context, paymentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE payment_id = $1)`
	var used bool
	err := r.pool.QueryRow(ctx, query, paymentID).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("failed to check payment usage: %w", err)
	}
	return used, nil
}
