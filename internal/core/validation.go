package core

// validation.go checks record values before they reach a table.
//
// Validation happens at two levels:
//  1. Field validation: one value against the rules of its logical field
//  2. Record validation: every field the target table carries
//
// Validators normalize as they go (ISBN separators removed, dates rewritten
// as dd-mm-yyyy), so callers should store the values they get back rather
// than the raw input. Search mode relaxes the date-in-the-past/future rules
// for records that are only used as search templates.

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/booksheet/internal/schema"
)

const (
	// MinCopies and MaxCopies bound the copies counter of a stock row.
	MinCopies = 1
	MaxCopies = 10

	isbnDigits = 13
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   schema.Field // Logical field name
	Value   string       // The invalid value
	Message string       // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every failure found in one record.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each failure to errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, ve := range e {
		errs[i] = ve
	}
	return errs
}

// Validator checks field values against the catalog rules.
type Validator struct {
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time

	// SearchMode skips the borrow_date/due_date ordering rules.
	SearchMode bool
}

func (v Validator) today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return truncateDay(now())
}

// Field validates one value and returns its normalized form.
func (v Validator) Field(f schema.Field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &ValidationError{Field: f, Value: value, Message: "cannot be empty"}
	}

	switch f {
	case schema.ISBN:
		return v.isbn(value)
	case schema.Year:
		return v.year(value)
	case schema.Copies:
		return v.copies(value)
	case schema.BorrowDate:
		return v.borrowDate(value)
	case schema.DueDate:
		return v.dueDate(value)
	case schema.Title, schema.Author, schema.Genre, schema.BorrowerName:
		return value, nil
	}
	return "", &ValidationError{Field: f, Value: value, Message: "unknown field"}
}

// Record validates every field table t carries and returns the normalized
// record. An empty copies value is allowed and left empty; AppendBook
// defaults it. All failures are reported together as ValidationErrors.
func (v Validator) Record(t schema.Table, rec Record) (Record, error) {
	fields := make([]schema.Field, 0, len(t.Fields))
	for _, f := range t.FieldNames() {
		if f == schema.Copies && strings.TrimSpace(rec.Copies) == "" {
			continue
		}
		fields = append(fields, f)
	}

	out, err := v.Fields(Record{CellRow: rec.CellRow}, rec, fields...)
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

// Fields validates the listed fields of rec and writes their normalized
// values into dst, which is returned.
func (v Validator) Fields(dst, rec Record, fields ...schema.Field) (Record, error) {
	var errs ValidationErrors
	for _, f := range fields {
		normalized, err := v.Field(f, rec.Get(f))
		if err != nil {
			var ve *ValidationError
			if !errors.As(err, &ve) {
				return Record{}, err
			}
			errs = append(errs, ve)
			continue
		}
		dst.Set(f, normalized)
	}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return dst, nil
}

func (v Validator) isbn(value string) (string, error) {
	isbn := NormalizeISBN(value)
	if len(isbn) != isbnDigits || !allDigits(isbn) {
		return "", &ValidationError{Field: schema.ISBN, Value: value, Message: "must be exactly 13 digits"}
	}
	return isbn, nil
}

func (v Validator) year(value string) (string, error) {
	maxYear := v.today().Year()
	n, ok := ParseInt(value)
	if !ok || n < 1 || n > int64(maxYear) {
		return "", &ValidationError{
			Field:   schema.Year,
			Value:   value,
			Message: fmt.Sprintf("must be an integer between 1 and %d", maxYear),
		}
	}
	return fmt.Sprint(n), nil
}

func (v Validator) copies(value string) (string, error) {
	n, ok := ParseInt(value)
	if !ok || n < MinCopies || n > MaxCopies {
		return "", &ValidationError{
			Field:   schema.Copies,
			Value:   value,
			Message: fmt.Sprintf("must be an integer between %d and %d", MinCopies, MaxCopies),
		}
	}
	return fmt.Sprint(n), nil
}

func (v Validator) borrowDate(value string) (string, error) {
	d, ok := ParseDateAt(value, v.today())
	if !ok {
		return "", invalidDate(schema.BorrowDate, value)
	}
	if !v.SearchMode && d.After(v.today()) {
		return "", &ValidationError{Field: schema.BorrowDate, Value: value, Message: "cannot be in the future"}
	}
	return FormatDate(d), nil
}

func (v Validator) dueDate(value string) (string, error) {
	d, ok := ParseDateAt(value, v.today())
	if !ok {
		return "", invalidDate(schema.DueDate, value)
	}
	if !v.SearchMode && !d.After(v.today()) {
		return "", &ValidationError{Field: schema.DueDate, Value: value, Message: "must be after today"}
	}
	return FormatDate(d), nil
}

func invalidDate(f schema.Field, value string) *ValidationError {
	return &ValidationError{Field: f, Value: value, Message: "invalid date, use dd-mm-yyyy"}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
