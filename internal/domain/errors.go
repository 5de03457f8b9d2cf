package domain

import "errors"

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrStaleVersion           = errors.New("stale version")
	ErrIdempotencyConflict    = errors.New("idempotency key already used with different request body")
	ErrOrderNotConfirmed      = errors.New("only confirmed orders can be closed")
	ErrInvalidCursor          = errors.New("invalid cursor")
	ErrInvalidID              = errors.New("invalid id")
	ErrTenantRequired         = errors.New("tenant id required")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrInvalidVersion         = errors.New("expected version must be a positive integer")
)
