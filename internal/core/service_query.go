package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/sheet"
)

// Search returns the rows of table whose field matches query.
//
// The query is validated in search mode before the backend is touched and
// its normalized form is what gets matched (an ISBN typed with dashes finds
// the stored digits). Title, author, genre and borrower_name match as
// case-insensitive substrings; every other field must match exactly.
// Each result carries the CellRow it was read from.
func (s *Service) Search(ctx context.Context, table string, field schema.Field, query string) ([]Record, error) {
	bt, err := s.tables.Lookup(table)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, bt, field, query)
}

func (s *Service) search(ctx context.Context, bt BoundTable, field schema.Field, query string) ([]Record, error) {
	spec, ok := bt.Schema.Spec(field)
	if !ok {
		return nil, &ValidationError{
			Field:   field,
			Value:   query,
			Message: fmt.Sprintf("not a column of table %s", bt.Key()),
		}
	}

	normalized, err := s.validator(true).Field(field, query)
	if err != nil {
		return nil, err
	}

	col, err := sheet.FindHeaderColumn(ctx, bt.Handle, spec.Label)
	if err != nil {
		return nil, err
	}

	rows, err := sheet.FindMatchingRows(ctx, bt.Handle, col, normalized, spec.Exact())
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, n := range rows {
		row, err := bt.Handle.ReadRow(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("read matching row %d: %w", n, err)
		}
		records = append(records, recordFromRow(bt.Schema, row, n))
	}
	return records, nil
}

// At returns the record stored at row of table. isbn must match the ISBN
// held by the row, so a row number that went stale is rejected instead of
// read.
func (s *Service) At(ctx context.Context, table string, row int, isbn string) (Record, error) {
	bt, err := s.tables.Lookup(table)
	if err != nil {
		return Record{}, err
	}

	cells, err := liveRow(ctx, bt, Record{ISBN: isbn, CellRow: row})
	if err != nil {
		return Record{}, err
	}
	return recordFromRow(bt.Schema, cells, row), nil
}

// List returns every data row of table in sheet order, or sorted when sort
// is non-nil. Blank rows are skipped.
func (s *Service) List(ctx context.Context, table string, sort *SortSpec) ([]Record, error) {
	bt, err := s.tables.Lookup(table)
	if err != nil {
		return nil, err
	}

	records, err := readRecords(ctx, bt)
	if err != nil {
		return nil, err
	}

	if sort == nil {
		return records, nil
	}
	if !bt.Schema.Has(sort.Field) {
		return nil, &ValidationError{
			Field:   sort.Field,
			Message: fmt.Sprintf("cannot sort %s by a field it does not have", bt.Key()),
		}
	}
	return sortRecordsAt(sort.Field, records, sort.Desc, s.now()), nil
}

// Overdue returns the borrowed rows whose due date is before now's date,
// earliest due first. Rows with an unparseable due date are skipped.
func (s *Service) Overdue(ctx context.Context, now time.Time) ([]Record, error) {
	records, err := readRecords(ctx, s.tables.Borrowed())
	if err != nil {
		return nil, err
	}

	today := truncateDay(now)
	var overdue []Record
	for _, rec := range records {
		due, ok := ParseDateAt(rec.DueDate, now)
		if !ok {
			continue
		}
		if due.Before(today) {
			overdue = append(overdue, rec)
		}
	}
	return sortRecordsAt(schema.DueDate, overdue, false, now), nil
}

// readRecords loads all data rows of a table with their cell rows.
func readRecords(ctx context.Context, bt BoundTable) ([]Record, error) {
	rows, err := bt.Handle.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	var records []Record
	for i := 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		records = append(records, recordFromRow(bt.Schema, rows[i], i+1))
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
