package bookmarks

import (
	"errors"
	"fmt"
)

// Sentinel errors for store call classification.
// Use errors.Is(err, bookmarks.ErrNotFound) to check.
var (
	// ErrNotFound indicates the requested node does not exist. The folder
	// resolver also returns it when asked to locate a folder without
	// permission to create one.
	ErrNotFound = errors.New("bookmarks: not found")

	// ErrNotEmpty indicates Remove was called on a folder that still has
	// children.
	ErrNotEmpty = errors.New("bookmarks: folder not empty")
)

// StoreError wraps a failed store call with the operation name and the
// node id involved, for debugging. Unwrap exposes the underlying cause so
// errors.Is still matches sentinels.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("bookmarks: %s %s: %v", e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("bookmarks: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr wraps err in a StoreError unless it already carries one.
func storeErr(op, id string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	return &StoreError{Op: op, ID: id, Err: err}
}
