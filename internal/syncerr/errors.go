// Package syncerr describes the failures the sync engine reports.
package syncerr

import (
	"errors"
	"fmt"
)

// Kind categorizes sync errors for handling and reporting.
type Kind string

const (
	ProviderUnavailable Kind = "ProviderUnavailable"
	DeliveryFailure     Kind = "DeliveryFailure"
	ConflictUnresolved  Kind = "ConflictUnresolved"
	IntegrityMismatch   Kind = "IntegrityMismatch"
	ConfigurationError  Kind = "ConfigurationError"
)

var (
	// ErrConflictNotFound indicates that no conflict exists with the given id
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrConflictResolved indicates that the conflict was already resolved
	ErrConflictResolved = errors.New("conflict already resolved")

	// ErrUnknownProvider indicates that the configured provider kind is not registered
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownStrategy indicates that the conflict strategy is not recognized
	ErrUnknownStrategy = errors.New("unknown conflict strategy")

	// ErrChecksumMismatch indicates that a payload does not match its checksum
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrEngineStopped indicates that the engine no longer accepts calls
	ErrEngineStopped = errors.New("engine stopped")
)

// Error wraps a cause with its category and the operation that failed.
type Error struct {
	Err  error
	Kind Kind
	Op   string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or "" when there is none.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
