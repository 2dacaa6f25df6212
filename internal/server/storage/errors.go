package storage

import "errors"

// Common storage errors
var (
	// ErrItemNotFound indicates that item was not found in storage
	ErrItemNotFound = errors.New("item not found")

	// ErrDeviceNotFound indicates that device was never seen by the relay
	ErrDeviceNotFound = errors.New("device not found")
)
