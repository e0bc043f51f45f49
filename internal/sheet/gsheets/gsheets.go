// Package gsheets implements sheet.Backend over the Google Sheets API.
//
// Each table is one worksheet (tab) of a single spreadsheet. Values are
// written RAW so the sheet never reinterprets dates or ISBNs.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JonMunkholm/booksheet/internal/sheet"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// New worksheets are created with this grid size.
	newSheetRows    = 100
	newSheetColumns = 20

	valueInputRaw = "RAW"
)

// Backend is a sheet.Backend over one spreadsheet.
type Backend struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // title -> numeric sheet id, for row deletes
}

var _ sheet.Backend = (*Backend)(nil)

// Open connects to the spreadsheet using a service-account credentials file.
// An empty credentialsFile falls back to application default credentials.
// Extra options are appended last and may override the endpoint or client.
func Open(ctx context.Context, spreadsheetID, credentialsFile string, opts ...option.ClientOption) (*Backend, error) {
	if spreadsheetID == "" {
		return nil, errors.New("gsheets: spreadsheet id is required")
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gsheets: create service: %w", err)
	}

	return &Backend{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// Close is a no-op; the HTTP client has nothing to release.
func (b *Backend) Close() error { return nil }

// EnsureTable finds or adds the worksheet and writes headers into row 1.
func (b *Backend) EnsureTable(ctx context.Context, title string, headers []string) (sheet.Table, error) {
	id, err := b.lookupSheet(ctx, title)
	if err != nil {
		return nil, wrap(sheet.OpEnsureTable, title, err)
	}

	if id < 0 {
		id, err = b.addSheet(ctx, title)
		if err != nil {
			return nil, wrap(sheet.OpEnsureTable, title, err)
		}
	}

	b.mu.Lock()
	b.sheetIDs[title] = id
	b.mu.Unlock()

	_, err = b.svc.Spreadsheets.Values.Update(b.spreadsheetID, rowRange(title, 1), &sheets.ValueRange{
		Values: [][]interface{}{toInterfaces(headers)},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return nil, wrap(sheet.OpEnsureTable, title, err)
	}

	return &table{backend: b, title: title, sheetID: id}, nil
}

// lookupSheet returns the sheet id for title, or -1 if it does not exist.
func (b *Backend) lookupSheet(ctx context.Context, title string) (int64, error) {
	ss, err := b.svc.Spreadsheets.Get(b.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}
	return -1, nil
}

func (b *Backend) addSheet(ctx context.Context, title string) (int64, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetColumns,
					},
				},
			},
		}},
	}

	resp, err := b.svc.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %q: empty reply", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

type table struct {
	backend *Backend
	title   string
	sheetID int64
}

func (t *table) Title() string { return t.title }

func (t *table) values() *sheets.SpreadsheetsValuesService {
	return t.backend.svc.Spreadsheets.Values
}

func (t *table) ReadAll(ctx context.Context) ([][]string, error) {
	vr, err := t.values().Get(t.backend.spreadsheetID, quoteTitle(t.title)).Context(ctx).Do()
	if err != nil {
		return nil, wrap(sheet.OpReadAll, t.title, err)
	}
	return toStrings(vr.Values), nil
}

func (t *table) ReadRow(ctx context.Context, row int) ([]string, error) {
	if row < 1 {
		return nil, &sheet.RowNotFoundError{Table: t.title, Row: row, Reason: "row index must be at least 1"}
	}

	vr, err := t.values().Get(t.backend.spreadsheetID, rowRange(t.title, row)).Context(ctx).Do()
	if err != nil {
		return nil, wrap(sheet.OpReadRow, t.title, err)
	}
	rows := toStrings(vr.Values)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (t *table) ReadColumn(ctx context.Context, col int) ([]string, error) {
	if col < 1 {
		return nil, fmt.Errorf("table %q: column index must be at least 1, got %d", t.title, col)
	}

	vr, err := t.values().Get(t.backend.spreadsheetID, columnRange(t.title, col)).
		MajorDimension("COLUMNS").Context(ctx).Do()
	if err != nil {
		return nil, wrap(sheet.OpReadColumn, t.title, err)
	}
	cols := toStrings(vr.Values)
	if len(cols) == 0 {
		return nil, nil
	}
	return cols[0], nil
}

func (t *table) WriteCell(ctx context.Context, row, col int, value string) error {
	if row < 1 {
		return &sheet.RowNotFoundError{Table: t.title, Row: row}
	}
	if col < 1 {
		return fmt.Errorf("table %q: column index must be at least 1, got %d", t.title, col)
	}

	_, err := t.values().Update(t.backend.spreadsheetID, cellRange(t.title, row, col), &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	return wrap(sheet.OpWriteCell, t.title, err)
}

func (t *table) AppendRow(ctx context.Context, values []string) error {
	_, err := t.values().Append(t.backend.spreadsheetID, quoteTitle(t.title), &sheets.ValueRange{
		Values: [][]interface{}{toInterfaces(values)},
	}).ValueInputOption(valueInputRaw).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return wrap(sheet.OpAppendRow, t.title, err)
}

func (t *table) DeleteRow(ctx context.Context, row int) error {
	if row < 1 {
		return &sheet.RowNotFoundError{Table: t.title, Row: row}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    t.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
					// Sheet id 0 is valid and must not be dropped as empty.
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}

	_, err := t.backend.svc.Spreadsheets.BatchUpdate(t.backend.spreadsheetID, req).Context(ctx).Do()
	return wrap(sheet.OpDeleteRow, t.title, err)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func wrap(op, title string, err error) error {
	if err == nil {
		return nil
	}
	return &sheet.BackendError{Op: op, Table: title, Kind: classify(err), Err: err}
}

// classify maps a googleapi.Error status to a sheet.Kind.
func classify(err error) sheet.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return sheet.KindTransient
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return sheet.KindUnknown
	}
	switch {
	case apiErr.Code == 404:
		return sheet.KindNotFound
	case apiErr.Code == 401, apiErr.Code == 403:
		return sheet.KindPermission
	case apiErr.Code == 429, apiErr.Code >= 500:
		return sheet.KindTransient
	}
	return sheet.KindUnknown
}

// ---------------------------------------------------------------------------
// Value conversion
// ---------------------------------------------------------------------------

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out
}
