package repository

import (
	"context"
	"time"

	"pixcharge/internal/domain"
)

// PaymentRepository defines the persistence operations for Pix payments.
type PaymentRepository interface {
	// Create persists a new payment record.
	// Returns ErrAlreadyExists if a record with the same id is already stored.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its gateway-assigned id.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// UpdateStatus moves a pending payment to the given status.
	// Transitions are forward-only: returns ErrTerminalStatus if the record
	// already reached a terminal status, ErrNotFound if it does not exist.
	UpdateStatus(ctx context.Context, id string, status domain.Status) error

	// ExpireIfPending atomically flips a payment to expired when it is still
	// pending and was created at or before cutoff, then returns the current
	// record. Records in any other state are returned untouched.
	ExpireIfPending(ctx context.Context, id string, cutoff time.Time) (*domain.Payment, error)
}
