// Package store holds what the storage backends share: the errors they
// report for missing and duplicate records.
package store

import "errors"

var (
	// ErrNoRecord is returned when a lookup by key matches nothing.
	ErrNoRecord = errors.New("store: no matching record")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("store: duplicate record")
)
