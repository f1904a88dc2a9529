package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// NotFoundError indicates a required entity is missing from the central store.
// Sync operations abort immediately when they hit one; replica writes made by
// earlier steps of the same composite call are kept so the call can be re-run.
type NotFoundError struct {
	ResourceType string // platform, project, folder, file, row, tm, tm_entry
	ResourceID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.ResourceType, e.ResourceID)
}

// Is allows errors.Is() to match against ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError represents a unique-constraint conflict in the central store
type ConflictError struct {
	Message      string
	ResourceType string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
