package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pixcharge/internal/domain"
	internalRedis "pixcharge/internal/redis"
	"pixcharge/internal/repository"
)

// Gateway is the interface for the charge gateway (payment processor).
type Gateway interface {
	// CreateCharge creates a Pix charge that expires at expiresAt.
	CreateCharge(ctx context.Context, amount float64, description string, expiresAt time.Time) (*domain.Charge, error)

	// PaymentStatus fetches the authoritative status of a payment.
	PaymentStatus(ctx context.Context, paymentID string) (string, error)
}

// SandboxGateway is an offline implementation of Gateway used when no access
// token is configured. Lookups always report approved.
type SandboxGateway struct{}

// NewSandboxGateway creates a new sandbox gateway.
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

// CreateCharge returns a synthetic charge with a generated payment id.
func (g *SandboxGateway) CreateCharge(ctx context.Context, amount float64, description string, expiresAt time.Time) (*domain.Charge, error) {
	id := uuid.NewString()
	code := "sandbox-pix-" + id
	return &domain.Charge{
		PaymentID:    id,
		QRCode:       code,
		QRCodeBase64: base64.StdEncoding.EncodeToString([]byte(code)),
	}, nil
}

// PaymentStatus always reports approved.
func (g *SandboxGateway) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	return "approved", nil
}

// paymentLockTTL bounds how long a webhook reconciliation may hold the
// per-payment lock.
const paymentLockTTL = 10 * time.Second

// PaymentService tracks Pix charge lifecycle: it creates charges through the
// gateway and reconciles status from webhook notifications and polling.
type PaymentService struct {
	repo    repository.PaymentRepository
	gateway Gateway
	cache   internalRedis.StatusCacheInterface
	lock    internalRedis.LockStoreInterface
	window  time.Duration
}

// NewPaymentService creates a new PaymentService. cache and lock are optional
// and may be nil when Redis is disabled.
func NewPaymentService(
	repo repository.PaymentRepository,
	gateway Gateway,
	cache internalRedis.StatusCacheInterface,
	lock internalRedis.LockStoreInterface,
	window time.Duration,
) *PaymentService {
	return &PaymentService{
		repo:    repo,
		gateway: gateway,
		cache:   cache,
		lock:    lock,
		window:  window,
	}
}

// CreateChargeRequest contains the parameters for creating a charge.
type CreateChargeRequest struct {
	Amount  float64
	OrderID string
}

// CreateChargeResult is what the frontend needs to display a charge.
type CreateChargeResult struct {
	PaymentID    string
	QRCode       string
	QRCodeBase64 string
	ExpiresAt    time.Time
}

// CreateCharge validates the request, creates a Pix charge through the
// gateway and seeds a pending payment record keyed by the gateway's id.
func (s *PaymentService) CreateCharge(ctx context.Context, req CreateChargeRequest) (*CreateChargeResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.OrderID == "" {
		return nil, ErrInvalidOrderID
	}

	now := time.Now()
	expiresAt := now.Add(s.window)
	description := fmt.Sprintf("Pagamento do Pedido %s via Pix", req.OrderID)

	charge, err := s.gateway.CreateCharge(ctx, req.Amount, description, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	payment := &domain.Payment{
		ID:        charge.PaymentID,
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Status:    domain.StatusPending,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("payment %s created for order %s, expires at %s", payment.ID, payment.OrderID, expiresAt.Format(time.RFC3339))

	return &CreateChargeResult{
		PaymentID:    charge.PaymentID,
		QRCode:       charge.QRCode,
		QRCodeBase64: charge.QRCodeBase64,
		ExpiresAt:    expiresAt,
	}, nil
}

// ProcessNotification reconciles one webhook notification. The webhook is a
// fire-and-forget contract: every outcome is acknowledged to the gateway, so
// failures here are logged and dropped rather than returned.
func (s *PaymentService) ProcessNotification(ctx context.Context, kind, paymentID string) {
	if kind != "payment" || paymentID == "" {
		return
	}

	if s.lock != nil {
		ok, err := s.lock.AcquirePaymentLock(ctx, paymentID, paymentLockTTL)
		if err == nil && !ok {
			// Another delivery for this payment is already reconciling
			// against the same authoritative source.
			log.Printf("webhook for payment %s skipped: reconciliation in flight", paymentID)
			return
		}
		if err == nil {
			defer func() {
				if err := s.lock.ReleasePaymentLock(ctx, paymentID); err != nil {
					log.Printf("failed to release lock for payment %s: %v", paymentID, err)
				}
			}()
		}
	}

	gatewayStatus, err := s.gateway.PaymentStatus(ctx, paymentID)
	if err != nil {
		log.Printf("failed to fetch status for payment %s: %v", paymentID, err)
		return
	}

	status := mapGatewayStatus(gatewayStatus)

	switch err := s.repo.UpdateStatus(ctx, paymentID, status); {
	case errors.Is(err, repository.ErrNotFound):
		// The record may not exist yet due to request ordering.
		log.Printf("webhook for unknown payment %s dropped (gateway status %s)", paymentID, gatewayStatus)
		return
	case errors.Is(err, repository.ErrTerminalStatus):
		log.Printf("stale webhook for payment %s ignored (gateway status %s)", paymentID, gatewayStatus)
		return
	case err != nil:
		log.Printf("failed to update payment %s: %v", paymentID, err)
		return
	}

	log.Printf("payment %s reconciled to %s", paymentID, status)

	if status.Terminal() {
		s.cacheStatus(ctx, paymentID)
	}
}

// mapGatewayStatus maps a gateway-reported status onto the local lifecycle.
// Intermediate gateway statuses (in_process, authorized, ...) stay pending.
func mapGatewayStatus(gatewayStatus string) domain.Status {
	switch gatewayStatus {
	case "approved":
		return domain.StatusApproved
	case "rejected":
		return domain.StatusRejected
	case "cancelled":
		return domain.StatusCancelled
	default:
		return domain.StatusPending
	}
}

// StatusResult is the outcome of a status poll. Found is false for unknown
// payment ids, which is a valid steady state rather than an error.
type StatusResult struct {
	Found   bool
	Status  domain.Status
	OrderID string
}

// CheckStatus returns the current status of a payment, lazily expiring
// records that are still pending past the expiration window.
func (s *PaymentService) CheckStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, paymentID)
		if err != nil {
			log.Printf("status cache read for payment %s failed: %v", paymentID, err)
		} else if cached != nil {
			return &StatusResult{
				Found:   true,
				Status:  domain.Status(cached.Status),
				OrderID: cached.OrderID,
			}, nil
		}
	}

	cutoff := time.Now().Add(-s.window)
	payment, err := s.repo.ExpireIfPending(ctx, paymentID, cutoff)
	if errors.Is(err, repository.ErrNotFound) {
		return &StatusResult{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}

	if payment.Status.Terminal() && s.cache != nil {
		s.setCache(ctx, payment)
	}

	return &StatusResult{
		Found:   true,
		Status:  payment.Status,
		OrderID: payment.OrderID,
	}, nil
}

func (s *PaymentService) cacheStatus(ctx context.Context, paymentID string) {
	if s.cache == nil {
		return
	}
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		log.Printf("failed to load payment %s for caching: %v", paymentID, err)
		return
	}
	s.setCache(ctx, payment)
}

func (s *PaymentService) setCache(ctx context.Context, payment *domain.Payment) {
	entry := internalRedis.CachedStatus{
		Status:  string(payment.Status),
		OrderID: payment.OrderID,
	}
	if err := s.cache.Set(ctx, payment.ID, entry); err != nil {
		log.Printf("status cache write for payment %s failed: %v", payment.ID, err)
	}
}
