package archive

import "errors"

var (
	// ErrInvalidArgument marks a call the caller must fix: empty entity or
	// id, no paths, or a malformed path.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means there is no archive entry for the entity and id.
	ErrNotFound = errors.New("archive entry not found")
	// ErrOperationFailed wraps any failure of the backing store.
	ErrOperationFailed = errors.New("archive operation failed")
)
