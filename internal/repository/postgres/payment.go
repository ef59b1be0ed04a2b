package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"pixcharge/internal/domain"
	"pixcharge/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, amount, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Amount,
		payment.Status,
		payment.CreatedAt,
		payment.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrAlreadyExists
		}
		return err
	}

	return nil
}

// GetByID retrieves a payment by id.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, order_id, amount, status, created_at, expires_at
		FROM payments WHERE id = $1
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// UpdateStatus moves a pending payment to the given status. The WHERE guard
// makes the forward-only rule atomic: a record that already reached a terminal
// status is left untouched.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	query := `
		UPDATE payments SET status = $2
		WHERE id = $1 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, id, status, domain.StatusPending)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Nothing updated: distinguish a missing record from a terminal one.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return repository.ErrTerminalStatus
}

// ExpireIfPending flips a still-pending payment created at or before cutoff to
// expired, then returns the current record.
func (r *PaymentRepository) ExpireIfPending(ctx context.Context, id string, cutoff time.Time) (*domain.Payment, error) {
	query := `
		UPDATE payments SET status = $2
		WHERE id = $1 AND status = $3 AND created_at <= $4
	`

	if _, err := r.q.ExecContext(ctx, query, id, domain.StatusExpired, domain.StatusPending, cutoff); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *PaymentRepository) scanOne(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Amount,
		&payment.Status,
		&payment.CreatedAt,
		&payment.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}
