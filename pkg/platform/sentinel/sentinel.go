package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors:
//   - ErrNotFound: record does not exist
//   - ErrConflict: unique constraint hit (duplicate email or handle)
//   - ErrExpired: token or entry past its expiry
//   - ErrUnavailable: backing store temporarily unreachable
//   - ErrInvalidState: caller passed arguments the store cannot act on
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
