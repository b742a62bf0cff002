package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrSequenceConflict is returned when an append races another writer for
	// the same sequence. Nothing was committed; the caller may retry the
	// whole append.
	ErrSequenceConflict = errors.New("ledger: sequence already occupied")

	// ErrMalformedBundle is returned by ImportAndVerify when the bundle
	// itself is unusable, as opposed to a well-formed bundle whose chain is
	// broken (which is a Report, not an error).
	ErrMalformedBundle = errors.New("ledger: malformed bundle")
)

// ValidationError reports a payload that fails its event kind's schema.
// Recoverable: the producer must fix the payload and make a new call. Never
// retried automatically, since an append is not idempotent.
type ValidationError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ledger: invalid %s payload: %s", e.Kind, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError reports a durability or IO failure underneath the service. An
// append that fails with a StoreError must not be assumed committed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ledger: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// RangeError reports an unsatisfiable read range. A missing sequence inside
// the requested bounds indicates a gap, which for a committed ledger means
// corruption.
type RangeError struct {
	From, To uint64
	Missing  *uint64
	Reason   string
}

func (e *RangeError) Error() string {
	if e.Missing != nil {
		return fmt.Sprintf("ledger: range [%d,%d]: missing sequence %d", e.From, e.To, *e.Missing)
	}
	return fmt.Sprintf("ledger: range [%d,%d]: %s", e.From, e.To, e.Reason)
}
