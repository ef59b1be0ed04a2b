package repository

import "errors"

var (
	// ErrNotFound is returned when a requested payment does not exist.
	ErrNotFound = errors.New("payment not found")

	// ErrAlreadyExists is returned when creating a payment whose id is already stored.
	ErrAlreadyExists = errors.New("payment already exists")

	// ErrTerminalStatus is returned when an update targets a payment that has
	// already reached a terminal status. Terminal records never regress.
	ErrTerminalStatus = errors.New("payment status is terminal")
)
