package core

import (
	"testing"

	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/google/go-cmp/cmp"
)

func TestRecordFromRow(t *testing.T) {
	tests := []struct {
		name  string
		table schema.Table
		row   []string
		want  Record
	}{
		{
			name:  "stock row",
			table: schema.Stock,
			row:   []string{"9780000000001", " Dune ", "Frank Herbert", "Sci-Fi", "1965", "3"},
			want:  Record{ISBN: "9780000000001", Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Year: "1965", Copies: "3", CellRow: 2},
		},
		{
			name:  "short row pads with empty values",
			table: schema.Stock,
			row:   []string{"9780000000001", "Dune"},
			want:  Record{ISBN: "9780000000001", Title: "Dune", CellRow: 2},
		},
		{
			name:  "extra cells ignored",
			table: schema.Borrowed,
			row:   []string{"9780000000001", "Dune", "Frank Herbert", "Sci-Fi", "1965", "Alice", "01-06-2024", "15-06-2024", "note"},
			want: Record{
				ISBN: "9780000000001", Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Year: "1965",
				BorrowerName: "Alice", BorrowDate: "01-06-2024", DueDate: "15-06-2024", CellRow: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recordFromRow(tt.table, tt.row, 2)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("recordFromRow() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRowFromRecord(t *testing.T) {
	rec := Record{
		ISBN: "9780000000001", Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Year: "1965",
		Copies: "3", BorrowerName: "Alice", DueDate: "15-06-2024",
	}

	stock := rowFromRecord(schema.Stock, rec)
	if diff := cmp.Diff([]string{"9780000000001", "Dune", "Frank Herbert", "Sci-Fi", "1965", "3"}, stock); diff != "" {
		t.Errorf("stock row mismatch (-want +got):\n%s", diff)
	}

	borrowed := rowFromRecord(schema.Borrowed, rec)
	if diff := cmp.Diff([]string{"9780000000001", "Dune", "Frank Herbert", "Sci-Fi", "1965", "Alice", "", "15-06-2024"}, borrowed); diff != "" {
		t.Errorf("borrowed row mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordIdentity(t *testing.T) {
	rec := Record{ISBN: "1", Title: "t", Author: "a", Genre: "g", Year: "y", Copies: "2", BorrowerName: "b", DueDate: "d", CellRow: 9}
	want := Record{ISBN: "1", Title: "t", Author: "a", Genre: "g", Year: "y"}
	if diff := cmp.Diff(want, rec.Identity()); diff != "" {
		t.Errorf("Identity() mismatch (-want +got):\n%s", diff)
	}
}
