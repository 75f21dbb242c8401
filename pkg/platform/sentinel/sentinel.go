package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so the ledger service can translate them into domain errors.
//
// - ErrNotFound: entity does not exist in store
// - ErrAlreadyUsed: unique slot (identity role) already taken
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
)
