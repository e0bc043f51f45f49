package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/booksheet/internal/logging"
	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/google/uuid"
)

// AddCopies adds n copies to the stock row rec was read from and returns the
// updated record. The current count is read from the live row; a missing or
// non-numeric count is treated as zero.
func (s *Service) AddCopies(ctx context.Context, rec Record, n int) (Record, error) {
	if n < MinCopies || n > MaxCopies {
		return Record{}, &ValidationError{
			Field:   schema.Copies,
			Value:   itoa(int64(n)),
			Message: fmt.Sprintf("must add between %d and %d copies", MinCopies, MaxCopies),
		}
	}
	return s.addCopies(ctx, s.tables.Stock(), rec, int64(n))
}

func (s *Service) addCopies(ctx context.Context, bt BoundTable, rec Record, n int64) (Record, error) {
	row, err := liveRow(ctx, bt, rec)
	if err != nil {
		return Record{}, err
	}

	col, err := column(ctx, bt, schema.Copies)
	if err != nil {
		return Record{}, err
	}

	current, _ := copiesOf(row, col)
	total := itoa(current + n)
	if err := bt.Handle.WriteCell(ctx, rec.CellRow, col, total); err != nil {
		return Record{}, fmt.Errorf("add copies at row %d: %w", rec.CellRow, err)
	}

	updated := recordFromRow(bt.Schema, row, rec.CellRow)
	updated.Copies = total
	return updated, nil
}

// RemoveBook takes n copies out of the row rec was read from.
//
// The row is deleted, and nil returned, when totally is set, when the table
// has no copies counter, when the counter is missing or not a number, or when
// fewer than one copy would remain. Otherwise the decremented record is
// returned. Deleting a row shifts every later row up, so other records read
// from the same table must be searched again afterwards.
func (s *Service) RemoveBook(ctx context.Context, table string, rec Record, n int, totally bool) (*Record, error) {
	bt, err := s.tables.Lookup(table)
	if err != nil {
		return nil, err
	}
	if !totally && n < 1 {
		return nil, &ValidationError{Field: schema.Copies, Value: itoa(int64(n)), Message: "must remove at least 1 copy"}
	}
	return s.removeBook(ctx, bt, rec, int64(n), totally)
}

func (s *Service) removeBook(ctx context.Context, bt BoundTable, rec Record, n int64, totally bool) (*Record, error) {
	row, err := liveRow(ctx, bt, rec)
	if err != nil {
		return nil, err
	}

	if !totally && bt.Schema.Has(schema.Copies) {
		col, err := column(ctx, bt, schema.Copies)
		if err != nil {
			return nil, err
		}
		if current, ok := copiesOf(row, col); ok && current-n > 0 {
			remaining := itoa(current - n)
			if err := bt.Handle.WriteCell(ctx, rec.CellRow, col, remaining); err != nil {
				return nil, fmt.Errorf("remove copies at row %d: %w", rec.CellRow, err)
			}
			updated := recordFromRow(bt.Schema, row, rec.CellRow)
			updated.Copies = remaining
			return &updated, nil
		}
	}

	if err := bt.Handle.DeleteRow(ctx, rec.CellRow); err != nil {
		return nil, fmt.Errorf("delete row %d: %w", rec.CellRow, err)
	}
	return nil, nil
}

// AppendBook appends rec to table, keeping only the fields the table has.
// A missing copies value defaults to 1. Stock rejects an ISBN it already
// holds with a DuplicateISBNError. The returned record has no CellRow.
func (s *Service) AppendBook(ctx context.Context, table string, rec Record) (Record, error) {
	bt, err := s.tables.Lookup(table)
	if err != nil {
		return Record{}, err
	}
	return s.appendBook(ctx, bt, rec)
}

func (s *Service) appendBook(ctx context.Context, bt BoundTable, rec Record) (Record, error) {
	if bt.Schema.Has(schema.Copies) && rec.Copies == "" {
		rec.Copies = "1"
	}

	if bt.Key() == schema.Stock.Key {
		existing, err := s.findByISBN(ctx, bt, rec.ISBN)
		if err != nil {
			return Record{}, err
		}
		if len(existing) > 0 {
			return Record{}, &DuplicateISBNError{ISBN: rec.ISBN, CellRow: existing[0]}
		}
	}

	row := rowFromRecord(bt.Schema, rec)
	if err := bt.Handle.AppendRow(ctx, row); err != nil {
		return Record{}, fmt.Errorf("append to %s: %w", bt.Key(), err)
	}
	return recordFromRow(bt.Schema, row, 0), nil
}

// findByISBN returns the rows of bt holding isbn exactly.
func (s *Service) findByISBN(ctx context.Context, bt BoundTable, isbn string) ([]int, error) {
	col, err := column(ctx, bt, schema.ISBN)
	if err != nil {
		return nil, err
	}
	return sheet.FindMatchingRows(ctx, bt.Handle, col, NormalizeISBN(isbn), true)
}

// StockIn adds a book to stock: copies are added to the existing row for
// the ISBN, or a new row is appended when the ISBN is not stocked yet.
func (s *Service) StockIn(ctx context.Context, rec Record) (Record, error) {
	valid, err := s.validator(false).Record(schema.Stock, rec)
	if err != nil {
		return Record{}, err
	}
	if valid.Copies == "" {
		valid.Copies = "1"
	}

	logger, _ := opLogger(ctx, "stock_in", valid)
	stock := s.tables.Stock()

	matches, err := s.search(ctx, stock, schema.ISBN, valid.ISBN)
	if err != nil {
		return Record{}, err
	}
	if len(matches) == 0 {
		appended, err := s.appendBook(ctx, stock, valid)
		if err != nil {
			return Record{}, err
		}
		logger.Info("stock in: appended new book")
		return appended, nil
	}

	warnDuplicates(logger, matches)
	n, _ := ParseInt(valid.Copies)
	updated, err := s.addCopies(ctx, stock, matches[0], n)
	if err != nil {
		return Record{}, err
	}
	logger.Info("stock in: added copies", "row", updated.CellRow, "copies", updated.Copies)
	return updated, nil
}

// CheckOut lends one copy of the stock record rec to rec.BorrowerName.
//
// The borrowed row is appended first, then the stock row is decremented
// (and deleted when it held the last copy). If the second step fails the
// book is recorded as borrowed but still counted in stock, and a
// PartialFailureError is returned. The post-removal stock record is returned,
// or nil when the stock row was deleted. An empty DueDate defaults to the
// loan period from today.
func (s *Service) CheckOut(ctx context.Context, rec Record) (*Record, error) {
	stock := s.tables.Stock()

	borrow := rec.Identity()
	borrow.BorrowerName = rec.BorrowerName
	borrow.BorrowDate = FormatDate(s.Today())
	borrow.DueDate = rec.DueDate
	if borrow.DueDate == "" {
		borrow.DueDate = FormatDate(s.Today().AddDate(0, 0, s.loanDays))
	}

	borrow, err := s.validator(false).Fields(borrow, borrow, schema.BorrowerName, schema.DueDate)
	if err != nil {
		return nil, err
	}

	// Read-only check so a stale record fails before anything is written.
	if _, err := liveRow(ctx, stock, rec); err != nil {
		return nil, err
	}

	logger, opID := opLogger(ctx, "check_out", rec, "borrower", borrow.BorrowerName, "row", rec.CellRow)

	if _, err := s.appendBook(ctx, s.tables.Borrowed(), borrow); err != nil {
		logger.Error("check out: append borrowed failed", "error", err)
		return nil, err
	}
	logger.Info("check out: borrowed row appended", "due_date", borrow.DueDate)

	remaining, err := s.removeBook(ctx, stock, rec, 1, false)
	if err != nil {
		logger.Error("check out: stock decrement failed", "error", err)
		return nil, &PartialFailureError{
			Op:     "check_out",
			OpID:   opID,
			Step:   "decrement_stock",
			Effect: fmt.Sprintf("isbn %s is recorded as borrowed by %s but its stock count was not reduced", rec.ISBN, borrow.BorrowerName),
			Err:    err,
		}
	}

	if remaining == nil {
		logger.Info("check out: last copy, stock row deleted")
	} else {
		logger.Info("check out: stock decremented", "copies", remaining.Copies)
	}
	return remaining, nil
}

// Return takes back the borrowed record rec.
//
// Stock is credited first: one copy is added to the stocked row for the ISBN,
// or a new stock row with one copy is appended. The borrowed row is deleted
// last, so a failure in between leaves the book double-counted rather than
// lost and is reported as a PartialFailureError. The credited stock record
// is returned.
func (s *Service) Return(ctx context.Context, rec Record) (Record, error) {
	borrowed := s.tables.Borrowed()
	stock := s.tables.Stock()

	if _, err := liveRow(ctx, borrowed, rec); err != nil {
		return Record{}, err
	}

	logger, opID := opLogger(ctx, "return", rec, "borrower", rec.BorrowerName, "row", rec.CellRow)

	matches, err := s.search(ctx, stock, schema.ISBN, rec.ISBN)
	if err != nil {
		logger.Error("return: stock search failed", "error", err)
		return Record{}, err
	}

	var credited Record
	if len(matches) > 0 {
		warnDuplicates(logger, matches)
		credited, err = s.addCopies(ctx, stock, matches[0], 1)
		if err != nil {
			logger.Error("return: stock credit failed", "error", err)
			return Record{}, err
		}
		logger.Info("return: stock credited", "stock_row", credited.CellRow, "copies", credited.Copies)
	} else {
		restock := rec.Identity()
		restock.Copies = "1"
		credited, err = s.appendBook(ctx, stock, restock)
		if err != nil {
			logger.Error("return: stock append failed", "error", err)
			return Record{}, err
		}
		logger.Info("return: book was not stocked, appended with one copy")
	}

	if _, err := s.removeBook(ctx, borrowed, rec, 0, true); err != nil {
		logger.Error("return: borrowed delete failed", "error", err)
		return Record{}, &PartialFailureError{
			Op:     "return",
			OpID:   opID,
			Step:   "delete_borrowed",
			Effect: fmt.Sprintf("isbn %s was returned to stock but is still listed as borrowed by %s", rec.ISBN, rec.BorrowerName),
			Err:    err,
		}
	}
	logger.Info("return: borrowed row deleted")
	return credited, nil
}

// opLogger returns a logger carrying a fresh operation id so the steps of one
// composite operation can be correlated.
func opLogger(ctx context.Context, op string, rec Record, args ...any) (*slog.Logger, string) {
	id := uuid.NewString()
	fields := append([]any{"op", op, "op_id", id, "isbn", rec.ISBN}, requesterAttrs(ctx)...)
	fields = append(fields, args...)
	return logging.WithFields(ctx, fields...), id
}

// warnDuplicates logs when an ISBN appears in more than one stock row. The
// lowest row is always the one used.
func warnDuplicates(logger *slog.Logger, matches []Record) {
	if len(matches) < 2 {
		return
	}
	rows := make([]int, len(matches))
	for i, m := range matches {
		rows[i] = m.CellRow
	}
	logger.Warn("duplicate isbn in stock, using first row", "rows", rows)
}
