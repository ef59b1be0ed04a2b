package memory

import (
	"context"
	"sync"
	"time"

	"pixcharge/internal/domain"
	"pixcharge/internal/repository"
)

// PaymentRepository is an in-memory implementation of repository.PaymentRepository.
// It is process-lifetime storage: records are never evicted and do not survive
// restarts. All operations are synchronized, so a status update and a lazy
// expiration racing on the same record resolve to exactly one winner.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
}

// NewPaymentRepository creates an empty in-memory payment repository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// Create persists a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.ID]; ok {
		return repository.ErrAlreadyExists
	}

	stored := *payment
	r.payments[payment.ID] = &stored
	return nil
}

// GetByID retrieves a payment by id.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// Return a copy to avoid mutation issues.
	copy := *payment
	return &copy, nil
}

// UpdateStatus moves a pending payment to the given status. Forward-only.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if payment.Status.Terminal() {
		return repository.ErrTerminalStatus
	}

	payment.Status = status
	return nil
}

// ExpireIfPending flips a still-pending payment created at or before cutoff to
// expired and returns the current record.
func (r *PaymentRepository) ExpireIfPending(ctx context.Context, id string, cutoff time.Time) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if payment.Status == domain.StatusPending && !payment.CreatedAt.After(cutoff) {
		payment.Status = domain.StatusExpired
	}

	copy := *payment
	return &copy, nil
}
