// Package sheettest runs the row semantics every sheet.Backend must share.
package sheettest

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// Run exercises backend against the sheet.Table contract. Each subtest uses
// its own table title so backends may share state between subtests.
func Run(t *testing.T, backend sheet.Backend) {
	t.Helper()

	t.Run("EnsureTableCreatesHeader", func(t *testing.T) {
		tbl := open(t, backend, "ISBN", "Title")
		rows := mustReadAll(t, tbl)
		if diff := cmp.Diff([][]string{{"ISBN", "Title"}}, rows); diff != "" {
			t.Errorf("new table mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("EnsureTableKeepsData", func(t *testing.T) {
		ctx := context.Background()
		tbl := open(t, backend, "ISBN", "Title")
		mustAppend(t, tbl, "1", "Dune")

		again, err := backend.EnsureTable(ctx, tbl.Title(), []string{"ISBN", "Title", "Author"})
		if err != nil {
			t.Fatalf("EnsureTable() error = %v", err)
		}
		want := [][]string{{"ISBN", "Title", "Author"}, {"1", "Dune"}}
		if diff := cmp.Diff(want, mustReadAll(t, again)); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ReadRow", func(t *testing.T) {
		ctx := context.Background()
		tbl := open(t, backend, "ISBN", "Title")
		mustAppend(t, tbl, "1", "Dune")

		got, err := tbl.ReadRow(ctx, 2)
		if err != nil {
			t.Fatalf("ReadRow(2) error = %v", err)
		}
		if diff := cmp.Diff([]string{"1", "Dune"}, got); diff != "" {
			t.Errorf("ReadRow(2) mismatch (-want +got):\n%s", diff)
		}

		past, err := tbl.ReadRow(ctx, 3)
		if err != nil {
			t.Fatalf("ReadRow(3) error = %v", err)
		}
		if past != nil {
			t.Errorf("ReadRow(3) = %v, want nil past the end", past)
		}
	})

	t.Run("ReadColumn", func(t *testing.T) {
		ctx := context.Background()
		tbl := open(t, backend, "ISBN", "Title")
		mustAppend(t, tbl, "1", "Dune")
		mustAppend(t, tbl, "2")

		got, err := tbl.ReadColumn(ctx, 2)
		if err != nil {
			t.Fatalf("ReadColumn() error = %v", err)
		}
		if diff := cmp.Diff([]string{"Title", "Dune", ""}, got); diff != "" {
			t.Errorf("ReadColumn() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("WriteCellPadsRow", func(t *testing.T) {
		ctx := context.Background()
		tbl := open(t, backend, "ISBN", "Title", "Copies")
		mustAppend(t, tbl, "1")

		if err := tbl.WriteCell(ctx, 2, 3, "4"); err != nil {
			t.Fatalf("WriteCell() error = %v", err)
		}
		got, err := tbl.ReadRow(ctx, 2)
		if err != nil {
			t.Fatalf("ReadRow() error = %v", err)
		}
		if diff := cmp.Diff([]string{"1", "", "4"}, got); diff != "" {
			t.Errorf("row mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("WriteCellMissingRow", func(t *testing.T) {
		tbl := open(t, backend, "ISBN")
		err := tbl.WriteCell(context.Background(), 5, 1, "x")
		if !errors.Is(err, sheet.ErrRowNotFound) {
			t.Errorf("WriteCell() error = %v, want ErrRowNotFound", err)
		}
	})

	t.Run("DeleteRowShiftsUp", func(t *testing.T) {
		ctx := context.Background()
		tbl := open(t, backend, "ISBN")
		mustAppend(t, tbl, "1")
		mustAppend(t, tbl, "2")
		mustAppend(t, tbl, "3")

		if err := tbl.DeleteRow(ctx, 3); err != nil {
			t.Fatalf("DeleteRow() error = %v", err)
		}
		want := [][]string{{"ISBN"}, {"1"}, {"3"}}
		if diff := cmp.Diff(want, mustReadAll(t, tbl)); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}

		// Appends land after the shifted rows.
		mustAppend(t, tbl, "4")
		row, err := tbl.ReadRow(ctx, 4)
		if err != nil {
			t.Fatalf("ReadRow() error = %v", err)
		}
		if diff := cmp.Diff([]string{"4"}, row); diff != "" {
			t.Errorf("appended row mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("DeleteRowMissing", func(t *testing.T) {
		tbl := open(t, backend, "ISBN")
		err := tbl.DeleteRow(context.Background(), 2)
		if !errors.Is(err, sheet.ErrRowNotFound) {
			t.Errorf("DeleteRow() error = %v, want ErrRowNotFound", err)
		}
	})

	t.Run("TablesAreIndependent", func(t *testing.T) {
		a := open(t, backend, "A")
		b := open(t, backend, "B")
		mustAppend(t, a, "a1")

		if n := len(mustReadAll(t, b)); n != 1 {
			t.Errorf("other table rows = %d, want 1", n)
		}
	})
}

func open(t *testing.T, backend sheet.Backend, headers ...string) sheet.Table {
	t.Helper()
	title := "t_" + uuid.NewString()[:8]
	tbl, err := backend.EnsureTable(context.Background(), title, headers)
	if err != nil {
		t.Fatalf("EnsureTable(%s) error = %v", title, err)
	}
	return tbl
}

func mustAppend(t *testing.T, tbl sheet.Table, values ...string) {
	t.Helper()
	if err := tbl.AppendRow(context.Background(), values); err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}
}

func mustReadAll(t *testing.T, tbl sheet.Table) [][]string {
	t.Helper()
	rows, err := tbl.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return rows
}
