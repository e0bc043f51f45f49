package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/sheet"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "validation error names the field",
			err:         &ValidationError{Field: schema.ISBN, Value: "123", Message: "must be exactly 13 digits"},
			wantCode:    "VAL001",
			wantMessage: `isbn "123" must be exactly 13 digits`,
		},
		{
			name: "validation errors are joined",
			err: ValidationErrors{
				{Field: schema.BorrowerName, Message: "cannot be empty"},
				{Field: schema.DueDate, Value: "x", Message: "invalid date, use dd-mm-yyyy"},
			},
			wantCode:    "VAL001",
			wantMessage: `borrower name cannot be empty; due date "x" invalid date, use dd-mm-yyyy`,
		},
		{
			name:        "wrapped validation error",
			err:         fmt.Errorf("stock in: %w", &ValidationError{Field: schema.Year, Value: "3000", Message: "too late"}),
			wantCode:    "VAL001",
			wantMessage: `year "3000" too late`,
		},
		{
			name:        "invalid date pattern",
			err:         errors.New("parse: invalid date 31-02-2024"),
			wantCode:    "VAL002",
			wantMessage: "Date could not be read",
		},
		{
			name:        "header not found",
			err:         &sheet.HeaderNotFoundError{Table: "stock", Header: "Title"},
			wantCode:    "TBL001",
			wantMessage: `Column "Title" is missing from the stock sheet`,
		},
		{
			name:        "unknown table",
			err:         fmt.Errorf("%w: members", ErrUnknownTable),
			wantCode:    "TBL002",
			wantMessage: "Unknown table",
		},
		{
			name:        "row not found with reason",
			err:         &sheet.RowNotFoundError{Table: "stock", Row: 4, Reason: "row no longer exists"},
			wantCode:    "ROW001",
			wantMessage: "Row 4 of stock changed since it was read: row no longer exists",
		},
		{
			name:        "duplicate isbn",
			err:         &DuplicateISBNError{ISBN: "9780000000001", CellRow: 2},
			wantCode:    "DUP001",
			wantMessage: "ISBN 9780000000001 is already in stock at row 2",
		},
		{
			name: "partial failure wins over wrapped backend error",
			err: &PartialFailureError{
				Op:     "check_out",
				OpID:   "abc",
				Step:   "decrement_stock",
				Effect: "stock count was not reduced",
				Err:    &sheet.BackendError{Op: sheet.OpWriteCell, Table: "stock", Kind: sheet.KindTransient, Err: errors.New("503")},
			},
			wantCode:    "PART001",
			wantMessage: "The check out only partly completed: stock count was not reduced",
		},
		{
			name:        "backend not found",
			err:         &sheet.BackendError{Op: sheet.OpEnsureTable, Table: "stock", Kind: sheet.KindNotFound, Err: errors.New("404")},
			wantCode:    "BE001",
			wantMessage: "The stock sheet could not be found",
		},
		{
			name:        "backend permission",
			err:         &sheet.BackendError{Op: sheet.OpReadAll, Table: "borrowed", Kind: sheet.KindPermission, Err: errors.New("403")},
			wantCode:    "BE002",
			wantMessage: "Access to the borrowed sheet was denied",
		},
		{
			name:        "backend transient",
			err:         &sheet.BackendError{Op: sheet.OpAppendRow, Table: "stock", Kind: sheet.KindTransient, Err: errors.New("429")},
			wantCode:    "BE003",
			wantMessage: "The spreadsheet is temporarily unavailable (append_row on stock)",
		},
		{
			name:        "backend unknown kind",
			err:         &sheet.BackendError{Op: sheet.OpDeleteRow, Table: "stock", Err: errors.New("400")},
			wantCode:    "BE004",
			wantMessage: "The spreadsheet rejected delete_row on stock",
		},
		{
			name:        "context canceled",
			err:         fmt.Errorf("read stock: %w", context.Canceled),
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline exceeded",
			err:         context.DeadlineExceeded,
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("Field CANNOT BE EMPTY"),
			wantCode:    "VAL003",
			wantMessage: "A required value is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_PartialFailureCarriesOpID(t *testing.T) {
	err := &PartialFailureError{Op: "return", OpID: "7f3c", Step: "delete_borrowed", Err: errors.New("boom")}
	got := MapError(err)
	if !strings.Contains(got.Action, "7f3c") {
		t.Errorf("MapError() action = %q, want op id", got.Action)
	}
}

func TestFormatUserError(t *testing.T) {
	err := &DuplicateISBNError{ISBN: "9780000000001", CellRow: 2}
	result := FormatUserError(err)

	expected := "ISBN 9780000000001 is already in stock at row 2 (Code: DUP001). Add copies to the existing entry instead"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  &sheet.RowNotFoundError{Table: "stock", Row: 3},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
