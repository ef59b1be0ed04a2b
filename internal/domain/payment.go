package domain

import "time"

// Status represents the current lifecycle status of a Pix charge.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Terminal reports whether the status admits no further transition.
// Only pending records may still move.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Payment represents one Pix charge tracked by this service.
// The ID is assigned by the payment gateway at charge creation.
type Payment struct {
	ID        string
	OrderID   string
	Amount    float64
	Status    Status
	CreatedAt time.Time
	ExpiresAt time.Time
}
