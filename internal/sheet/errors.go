package sheet

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrHeaderNotFound = errors.New("header not found")
	ErrRowNotFound    = errors.New("row not found")
	ErrBackend        = errors.New("backend error")
)

// HeaderNotFoundError is returned when a label is missing from row 1.
type HeaderNotFoundError struct {
	Table  string
	Header string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("table %q: header %q not found", e.Table, e.Header)
}

func (e *HeaderNotFoundError) Is(target error) bool {
	return target == ErrHeaderNotFound
}

// RowNotFoundError is returned when a row index does not address a live
// data row, including a cell_row that went stale after a structural change.
type RowNotFoundError struct {
	Table  string
	Row    int
	Reason string
}

func (e *RowNotFoundError) Error() string {
	msg := fmt.Sprintf("table %q: row %d not found", e.Table, e.Row)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *RowNotFoundError) Is(target error) bool {
	return target == ErrRowNotFound
}

// Kind classifies a backend failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermission
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// BackendError wraps a failure reported by the underlying store.
type BackendError struct {
	Op    string // One of the Op* constants
	Table string
	Kind  Kind
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %q (%s): %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// Retryable reports whether the failure is worth retrying later.
func (e *BackendError) Retryable() bool {
	return e.Kind == KindTransient
}
