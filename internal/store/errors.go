package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable marks any transport or query failure against the
	// backing store. Callers check it with errors.Is; the mirror relies on
	// it to keep a stale snapshot instead of clearing.
	ErrUnavailable = errors.New("record store unavailable")

	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")
)

// Unavailable wraps err under ErrUnavailable, preserving the original text.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
