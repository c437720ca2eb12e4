package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// row does not exist. Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule (missing title,
// end date before start date, coordinates out of range).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrReferentialViolation is returned when a write would reference a parent
// row that does not exist. The write is rejected before any mutation.
var ErrReferentialViolation = errors.New("referential violation")

// ErrCorruptBackup is returned when a backup payload is truncated, malformed,
// or carries an unsupported schema version. Nothing is written to the store.
var ErrCorruptBackup = errors.New("backup could not be read")

// ErrOrphanEntry is returned when a backup payload contains an entry whose
// trip is not part of the same payload. The import is aborted wholesale.
var ErrOrphanEntry = errors.New("orphan entry in backup")

// ErrStoreUnavailable is returned when the underlying database failed to open
// or execute a statement. Callers may retry; the core never retries itself.
var ErrStoreUnavailable = errors.New("store unavailable")
