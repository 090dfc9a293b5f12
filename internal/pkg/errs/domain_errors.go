package errs

import "errors"

// Domain-specific sentinel errors shared by the usecase and handler layers.
// InsufficientCapacity is not here: it is a typed error owned by
// internal/domain/capacity because it carries the exhausted key.
var (
	// Caller errors (never retried)
	ErrInvalidRequest   = errors.New("invalid request")
	ErrResourceNotFound = errors.New("resource not found")
	ErrDraftNotFound    = errors.New("draft not found")

	// Infrastructure errors (safe to retry, no partial mutation occurred)
	ErrLedgerTimeout        = errors.New("ledger busy, retry the operation")
	ErrStoreOperationFailed = errors.New("store operation failed")
)
