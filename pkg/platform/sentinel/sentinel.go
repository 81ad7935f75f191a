package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the ledger seam return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: record already exists or was concurrently replaced
// - ErrInsufficientFunds: the paying account cannot cover a transfer
// - ErrUnavailable: backing service temporarily unreachable
//
// For rule violations (bad input, wrong lifecycle state), use
// pkg/domain-errors directly.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnavailable       = errors.New("unavailable")
)
