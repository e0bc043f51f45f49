package core

import (
	"strings"

	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/sheet"
)

// Record is one row of either table, keyed by logical field.
//
// All values are kept as strings exactly as they are stored in the sheet.
// CellRow is the 1-based row the record was read from. It is only valid
// until the next structural change (append or delete) to the same table and
// is never written back.
type Record struct {
	ISBN         string `json:"isbn"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Genre        string `json:"genre"`
	Year         string `json:"year"`
	Copies       string `json:"copies,omitempty"`
	BorrowerName string `json:"borrower_name,omitempty"`
	BorrowDate   string `json:"borrow_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`

	CellRow int `json:"-"`
}

// Get returns the value of a logical field.
func (r Record) Get(f schema.Field) string {
	switch f {
	case schema.ISBN:
		return r.ISBN
	case schema.Title:
		return r.Title
	case schema.Author:
		return r.Author
	case schema.Genre:
		return r.Genre
	case schema.Year:
		return r.Year
	case schema.Copies:
		return r.Copies
	case schema.BorrowerName:
		return r.BorrowerName
	case schema.BorrowDate:
		return r.BorrowDate
	case schema.DueDate:
		return r.DueDate
	}
	return ""
}

// Set assigns a logical field. Unknown fields are ignored.
func (r *Record) Set(f schema.Field, value string) {
	switch f {
	case schema.ISBN:
		r.ISBN = value
	case schema.Title:
		r.Title = value
	case schema.Author:
		r.Author = value
	case schema.Genre:
		r.Genre = value
	case schema.Year:
		r.Year = value
	case schema.Copies:
		r.Copies = value
	case schema.BorrowerName:
		r.BorrowerName = value
	case schema.BorrowDate:
		r.BorrowDate = value
	case schema.DueDate:
		r.DueDate = value
	}
}

// Identity returns a copy holding only the fields shared by both tables.
func (r Record) Identity() Record {
	return Record{
		ISBN:   r.ISBN,
		Title:  r.Title,
		Author: r.Author,
		Genre:  r.Genre,
		Year:   r.Year,
	}
}

// recordFromRow zips a sheet row against the table's field order.
func recordFromRow(t schema.Table, row []string, cellRow int) Record {
	var rec Record
	for i, spec := range t.Fields {
		rec.Set(spec.Field, strings.TrimSpace(sheet.Cell(row, i+1)))
	}
	rec.CellRow = cellRow
	return rec
}

// rowFromRecord projects a record onto the table's columns. Fields the
// table does not carry are dropped; fields it carries but the record lacks
// are written as empty cells.
func rowFromRecord(t schema.Table, rec Record) []string {
	row := make([]string, len(t.Fields))
	for i, spec := range t.Fields {
		row[i] = rec.Get(spec.Field)
	}
	return row
}
