package sheet

import (
	"context"
	"strings"
)

// FindHeaderColumn returns the 1-based column whose header cell equals
// label, ignoring case and surrounding whitespace.
func FindHeaderColumn(ctx context.Context, t Table, label string) (int, error) {
	header, err := t.ReadRow(ctx, 1)
	if err != nil {
		return 0, err
	}

	want := strings.TrimSpace(label)
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), want) {
			return i + 1, nil
		}
	}
	return 0, &HeaderNotFoundError{Table: t.Title(), Header: label}
}

// FindMatchingRows returns the data rows whose cell in col matches pattern.
//
// Matching ignores case. With exact set the whole cell must equal pattern;
// otherwise pattern may appear anywhere in the cell. The header row is never
// returned, and rows are reported in ascending order.
func FindMatchingRows(ctx context.Context, t Table, col int, pattern string, exact bool) ([]int, error) {
	cells, err := t.ReadColumn(ctx, col)
	if err != nil {
		return nil, err
	}

	match := Matcher(pattern, exact)

	var rows []int
	for i := 1; i < len(cells); i++ {
		if match(cells[i]) {
			rows = append(rows, i+1)
		}
	}
	return rows, nil
}

// Matcher builds the case-insensitive predicate used by FindMatchingRows.
func Matcher(pattern string, exact bool) func(string) bool {
	want := strings.ToLower(strings.TrimSpace(pattern))
	if exact {
		return func(cell string) bool {
			return strings.ToLower(strings.TrimSpace(cell)) == want
		}
	}
	return func(cell string) bool {
		return strings.Contains(strings.ToLower(cell), want)
	}
}
