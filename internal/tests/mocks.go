package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"pixcharge/internal/domain"
	"pixcharge/internal/redis"
	"pixcharge/internal/service"
)

// ──────────────────────────────────────────────
// MOCK CHARGE GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a controllable implementation of service.Gateway.
type MockGateway struct {
	mu sync.Mutex

	// NextPaymentID is the id assigned to the next created charge.
	NextPaymentID string

	// Statuses maps payment ids to the status reported on lookup.
	Statuses map[string]string

	// Counters for verification
	CreateCallCount int32
	StatusCallCount int32

	// Error injection
	CreateError error
	StatusError error
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		NextPaymentID: "P1",
		Statuses:      make(map[string]string),
	}
}

// SetStatus sets the status the gateway reports for a payment.
func (m *MockGateway) SetStatus(paymentID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses[paymentID] = status
}

func (m *MockGateway) CreateCharge(ctx context.Context, amount float64, description string, expiresAt time.Time) (*domain.Charge, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.Charge{
		PaymentID:    m.NextPaymentID,
		QRCode:       "pix-code-" + m.NextPaymentID,
		QRCodeBase64: "cGl4LWNvZGU=",
	}, nil
}

func (m *MockGateway) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	atomic.AddInt32(&m.StatusCallCount, 1)
	if m.StatusError != nil {
		return "", m.StatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.Statuses[paymentID]; ok {
		return status, nil
	}
	return "in_process", nil
}

// ──────────────────────────────────────────────
// MOCK STATUS CACHE
// ──────────────────────────────────────────────

// MockStatusCache is an in-memory implementation of redis.StatusCacheInterface.
type MockStatusCache struct {
	mu      sync.RWMutex
	entries map[string]redis.CachedStatus

	GetCallCount int32
	SetCallCount int32

	GetError error
	SetError error
}

// NewMockStatusCache creates a new mock status cache.
func NewMockStatusCache() *MockStatusCache {
	return &MockStatusCache{
		entries: make(map[string]redis.CachedStatus),
	}
}

func (m *MockStatusCache) Get(ctx context.Context, paymentID string) (*redis.CachedStatus, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[paymentID]
	if !ok {
		return nil, nil
	}
	copy := entry
	return &copy, nil
}

func (m *MockStatusCache) Set(ctx context.Context, paymentID string, entry redis.CachedStatus) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[paymentID] = entry
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of redis.LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireCallCount int32
	ReleaseCallCount int32

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

// Hold marks a payment lock as already held by someone else.
func (m *MockLockStore) Hold(paymentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[paymentID] = true
}

func (m *MockLockStore) AcquirePaymentLock(ctx context.Context, paymentID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[paymentID] {
		return false, nil
	}
	m.locks[paymentID] = true
	return true, nil
}

func (m *MockLockStore) ReleasePaymentLock(ctx context.Context, paymentID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, paymentID)
	return nil
}

// Ensure mocks satisfy the interfaces they stand in for.
var (
	_ service.Gateway            = (*MockGateway)(nil)
	_ redis.StatusCacheInterface = (*MockStatusCache)(nil)
	_ redis.LockStoreInterface   = (*MockLockStore)(nil)
)
