package core

import (
	"errors"
	"fmt"
)

// ErrUnknownTable is returned when a table key is not one of the catalog tables.
var ErrUnknownTable = errors.New("unknown table")

// DuplicateISBNError is returned when appending a stock row whose ISBN is
// already present.
type DuplicateISBNError struct {
	ISBN    string
	CellRow int // Row of the existing entry
}

func (e *DuplicateISBNError) Error() string {
	return fmt.Sprintf("duplicate isbn %s: already in stock at row %d", e.ISBN, e.CellRow)
}

// PartialFailureError reports a composite operation that failed after at
// least one write succeeded. Nothing is rolled back; the message says what
// the sheet now holds so it can be repaired by hand.
type PartialFailureError struct {
	Op     string // check_out, return
	OpID   string // Correlates with the operation's log entries
	Step   string // Step that failed
	Effect string // State left behind by the completed steps
	Err    error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure in %s (op %s) at %s: %v; %s", e.Op, e.OpID, e.Step, e.Err, e.Effect)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
