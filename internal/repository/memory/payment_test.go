package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pixcharge/internal/domain"
	"pixcharge/internal/repository"
)

func newPayment(id string, status domain.Status, createdAt time.Time) *domain.Payment {
	return &domain.Payment{
		ID:        id,
		OrderID:   "ORD-" + id,
		Amount:    10,
		Status:    status,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(7 * time.Minute),
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	t.Parallel()

	repo := NewPaymentRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newPayment("P1", domain.StatusPending, time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Create(ctx, newPayment("P1", domain.StatusPending, time.Now())); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	t.Parallel()

	repo := NewPaymentRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newPayment("P1", domain.StatusPending, time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, "P1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the returned record must not affect the stored one.
	got.Status = domain.StatusApproved

	stored, _ := repo.GetByID(ctx, "P1")
	if stored.Status != domain.StatusPending {
		t.Error("stored record was mutated through a returned copy")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewPaymentRepository()
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	t.Parallel()

	repo := NewPaymentRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newPayment("P1", domain.StatusPending, time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.UpdateStatus(ctx, "P1", domain.StatusApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Terminal records never move again.
	if err := repo.UpdateStatus(ctx, "P1", domain.StatusPending); !errors.Is(err, repository.ErrTerminalStatus) {
		t.Errorf("expected ErrTerminalStatus, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, "P1", domain.StatusRejected); !errors.Is(err, repository.ErrTerminalStatus) {
		t.Errorf("expected ErrTerminalStatus, got %v", err)
	}

	got, _ := repo.GetByID(ctx, "P1")
	if got.Status != domain.StatusApproved {
		t.Errorf("expected approved, got %s", got.Status)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewPaymentRepository()
	if err := repo.UpdateStatus(context.Background(), "missing", domain.StatusApproved); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpireIfPending(t *testing.T) {
	t.Parallel()

	repo := NewPaymentRepository()
	ctx := context.Background()
	cutoff := time.Now()

	// Old and pending: expires.
	if err := repo.Create(ctx, newPayment("old", domain.StatusPending, cutoff.Add(-8*time.Minute))); err != nil {
		t.Fatal(err)
	}
	got, err := repo.ExpireIfPending(ctx, "old", cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusExpired {
		t.Errorf("expected expired, got %s", got.Status)
	}

	// Fresh and pending: untouched.
	if err := repo.Create(ctx, newPayment("fresh", domain.StatusPending, cutoff.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.ExpireIfPending(ctx, "fresh", cutoff)
	if got.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}

	// Old but terminal: untouched.
	if err := repo.Create(ctx, newPayment("paid", domain.StatusApproved, cutoff.Add(-8*time.Minute))); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.ExpireIfPending(ctx, "paid", cutoff)
	if got.Status != domain.StatusApproved {
		t.Errorf("expected approved, got %s", got.Status)
	}

	// Missing record.
	if _, err := repo.ExpireIfPending(ctx, "missing", cutoff); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
