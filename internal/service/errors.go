package service

import "errors"

var (
	// ErrInvalidAmount is returned when the charge amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidOrderID is returned when the order id is empty.
	ErrInvalidOrderID = errors.New("order id is required")

	// ErrInvalidPaymentID is returned when a payment id is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrGateway wraps failures of the payment gateway (network errors,
	// rejected requests, timeouts). No retry is attempted.
	ErrGateway = errors.New("payment gateway error")
)
