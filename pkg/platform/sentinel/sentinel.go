package sentinel

import "errors"

// Sentinel errors for storage facts. Both store backends return these
// (optionally wrapped) so services can translate them into domain errors
// without knowing which backend is in use.
//
// - ErrNotFound: row does not exist
// - ErrAlreadyUsed: a uniqueness constraint rejected the write
// - ErrInvalidState: row exists but is in the wrong state for the write
// - ErrUnavailable: backend temporarily unavailable
//
// Input validation never uses these; see pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
