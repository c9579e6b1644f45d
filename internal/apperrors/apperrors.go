package apperrors

import (
	"errors"
	"fmt"
)

// ErrInFlight rejects a re-entrant write while one is still outstanding
// on the same surface for the same signer.
var ErrInFlight = errors.New("operation already in flight")

// MalformedRecordError describes a single on-chain record that could not
// be normalized. The batch policy is drop-and-log, so this error names
// the record, it does not fail the whole read.
type MalformedRecordError struct {
	Index  int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed campaign record at index %d: %s", e.Index, e.Reason)
}

// ValidationError rejects a write before anything is submitted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// TransactionError wraps a submission, signing, or network failure during
// a state-changing call. No local state needs rollback: nothing is
// mutated before confirmation.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// ReadError wraps a failure of the view call against the ledger.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("ledger read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
