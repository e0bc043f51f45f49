// Package schema describes the fixed layout of the catalog's two tables.
//
// Each table is a header row followed by data rows. A [Table] lists its
// fields in column order; the header label of every field is what the
// backend stores in row 1. The layout is static: nothing registers tables
// at runtime and there is exactly one schema version.
package schema

import "strings"

// Version identifies the table layout written into new sheets.
const Version = 1

// Field is the logical name of a record attribute.
type Field string

const (
	ISBN         Field = "isbn"
	Title        Field = "title"
	Author       Field = "author"
	Genre        Field = "genre"
	Year         Field = "year"
	Copies       Field = "copies"
	BorrowerName Field = "borrower_name"
	BorrowDate   Field = "borrow_date"
	DueDate      Field = "due_date"
)

// FieldType is the value type used for validation and sorting.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldDate
)

func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "integer"
	case FieldDate:
		return "date"
	default:
		return "text"
	}
}

// MatchMode selects how a search query is compared against cell values.
type MatchMode int

const (
	MatchExact     MatchMode = iota // case-insensitive equality
	MatchSubstring                  // case-insensitive containment
)

// FieldSpec binds a logical field to its header label and value rules.
type FieldSpec struct {
	Field Field
	Label string // Header cell text (must match the sheet exactly, ignoring case)
	Type  FieldType
	Match MatchMode
}

// Exact reports whether searches on this field use anchored equality.
func (s FieldSpec) Exact() bool {
	return s.Match == MatchExact
}

// Table is the static description of one worksheet.
type Table struct {
	Key    string // Stable identifier used by callers: "stock", "borrowed"
	Title  string // Worksheet title in the backend
	Fields []FieldSpec
}

// Headers returns the header row labels in column order.
func (t Table) Headers() []string {
	headers := make([]string, len(t.Fields))
	for i, spec := range t.Fields {
		headers[i] = spec.Label
	}
	return headers
}

// FieldNames returns the logical field names in column order.
func (t Table) FieldNames() []Field {
	names := make([]Field, len(t.Fields))
	for i, spec := range t.Fields {
		names[i] = spec.Field
	}
	return names
}

// Spec returns the FieldSpec for f, or false if the table has no such field.
func (t Table) Spec(f Field) (FieldSpec, bool) {
	for _, spec := range t.Fields {
		if spec.Field == f {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Has reports whether the table includes field f.
func (t Table) Has(f Field) bool {
	_, ok := t.Spec(f)
	return ok
}

// Column returns the 1-based column position of f as laid out by Headers,
// or 0 if the table has no such field.
func (t Table) Column(f Field) int {
	for i, spec := range t.Fields {
		if spec.Field == f {
			return i + 1
		}
	}
	return 0
}

// ParseField resolves a logical field name, ignoring case and surrounding
// whitespace. Header labels ("Borrower_name") are accepted as well.
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range allFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

var allFields = []Field{ISBN, Title, Author, Genre, Year, Copies, BorrowerName, BorrowDate, DueDate}
