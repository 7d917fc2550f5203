package services

import "errors"

// Domain errors returned by the services. Handlers map these to HTTP status
// codes; raw storage errors are never surfaced to clients.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrNotAssigned       = errors.New("mission not assigned to this member")
	ErrAlreadyValidated  = errors.New("mission already validated for this member")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInsufficientStock = errors.New("insufficient stock")
)
