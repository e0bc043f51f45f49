package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

type testCLI struct {
	*cli
	out     *bytes.Buffer
	backend *sheet.MemoryBackend
}

func newTestCLI(t *testing.T, input string) *testCLI {
	t.Helper()

	backend := sheet.NewMemoryBackend()
	svc, err := core.Open(context.Background(), backend, core.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	backend.Seed("stock",
		[]string{"9780000000001", "Dune", "Frank Herbert", "Sci-Fi", "1965", "3"},
		[]string{"9780000000002", "Dune Messiah", "Frank Herbert", "Sci-Fi", "1969", "1"},
		[]string{"9780000000003", "Emma", "Jane Austen", "Classic", "1815", "2"},
	)
	backend.Seed("borrowed",
		[]string{"9780000000003", "Emma", "Jane Austen", "Classic", "1815", "Alice Smith", "01-05-2024", "01-06-2024"},
		[]string{"9780000000004", "Persuasion", "Jane Austen", "Classic", "1817", "Bob Jones", "10-06-2024", "30-06-2024"},
		[]string{"9780000000005", "The Hobbit", "J.R.R. Tolkien", "Fantasy", "1937", "Dan Brown", "01-03-2024", "15-05-2024"},
	)

	out := &bytes.Buffer{}
	return &testCLI{
		cli: &cli{
			in:     strings.NewReader(input),
			out:    out,
			errOut: &bytes.Buffer{},
			svc:    svc,
		},
		out:     out,
		backend: backend,
	}
}

func (tc *testCLI) run(args ...string) error {
	root := newRootCmd(tc.cli)
	root.SetArgs(args)
	return root.Execute()
}

func decodeOut[T any](t *testing.T, tc *testCLI) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(tc.out.Bytes(), &v), "output: %s", tc.out.String())
	return v
}

func rowsOf(recs []recordJSON) []int {
	rows := make([]int, len(recs))
	for i, r := range recs {
		rows[i] = r.Row
	}
	return rows
}

// ----------------------------------------------------------------------------
// Read commands
// ----------------------------------------------------------------------------

func TestList(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantRows []int
	}{
		{"sheet order", []string{"list", "stock"}, []int{2, 3, 4}},
		{"sort by copies desc", []string{"list", "stock", "--sort", "copies", "--desc"}, []int{2, 4, 3}},
		{"borrowed by due date", []string{"list", "BORROWED", "--sort", "due_date"}, []int{4, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestCLI(t, "")
			require.NoError(t, tc.run(append(tt.args, "--format", "json")...))
			assert.Equal(t, tt.wantRows, rowsOf(decodeOut[[]recordJSON](t, tc)))
		})
	}
}

func TestList_Text(t *testing.T) {
	tc := newTestCLI(t, "")
	require.NoError(t, tc.run("list", "stock", "--format", "text"))

	lines := strings.Split(strings.TrimSpace(tc.out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"ROW", "ISBN", "TITLE", "AUTHOR", "GENRE", "YEAR", "COPIES"}, strings.Fields(lines[0]))
	assert.True(t, strings.HasPrefix(lines[2], "3 "), "line %q", lines[2])
	assert.Contains(t, lines[2], "Dune Messiah")
}

func TestList_Errors(t *testing.T) {
	tc := newTestCLI(t, "")
	assert.ErrorIs(t, tc.run("list", "members"), core.ErrUnknownTable)

	tc = newTestCLI(t, "")
	err := tc.run("list", "stock", "--sort", "shelf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown sort field "shelf"`)
}

func TestSearch(t *testing.T) {
	tc := newTestCLI(t, "")
	require.NoError(t, tc.run("search", "stock", "title", "dune", "--format", "json"))
	assert.Equal(t, []int{2, 3}, rowsOf(decodeOut[[]recordJSON](t, tc)))

	tc = newTestCLI(t, "")
	require.NoError(t, tc.run("search", "borrowed", "borrower_name", "bob", "jones", "--format", "json"))
	recs := decodeOut[[]recordJSON](t, tc)
	require.Len(t, recs, 1)
	assert.Equal(t, "Persuasion", recs[0].Title)

	tc = newTestCLI(t, "")
	require.NoError(t, tc.run("search", "stock", "title", "ulysses", "--format", "text"))
	assert.Equal(t, "No records.\n", tc.out.String())

	tc = newTestCLI(t, "")
	assert.Error(t, tc.run("search", "stock", "shelf", "x"))
}

func TestOverdue(t *testing.T) {
	tc := newTestCLI(t, "")
	require.NoError(t, tc.run("overdue", "--format", "json"))

	recs := decodeOut[[]recordJSON](t, tc)
	require.Len(t, recs, 2)
	assert.Equal(t, "The Hobbit", recs[0].Title)
	assert.Equal(t, "Emma", recs[1].Title)
}

// ----------------------------------------------------------------------------
// Mutations
// ----------------------------------------------------------------------------

func TestAdd(t *testing.T) {
	t.Run("new isbn appends", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.run("add",
			"--isbn", "978-0-00-000000-9", "--title", "Middlemarch", "--author", "George Eliot",
			"--genre", "Classic", "--year", "1871", "--copies", "2", "--format", "text"))

		assert.Equal(t, "Stocked: Middlemarch (9780000000009), 2 copies in stock\n", tc.out.String())
		rows := tc.backend.Rows("stock")
		require.Len(t, rows, 5)
		assert.Equal(t, []string{"9780000000009", "Middlemarch", "George Eliot", "Classic", "1871", "2"}, rows[4])
	})

	t.Run("stocked isbn adds copies", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.run("add",
			"--isbn", "9780000000001", "--title", "Dune", "--author", "Frank Herbert",
			"--genre", "Sci-Fi", "--year", "1965", "--copies", "2", "--format", "json"))

		res := decodeOut[resultJSON](t, tc)
		require.NotNil(t, res.Record)
		assert.Equal(t, "5", res.Record.Copies)
		assert.Equal(t, 2, res.Record.Row)
		assert.Len(t, tc.backend.Rows("stock"), 4)
	})

	t.Run("invalid isbn", func(t *testing.T) {
		tc := newTestCLI(t, "")
		err := tc.run("add", "--isbn", "12", "--title", "X", "--author", "Y", "--genre", "Z", "--year", "2000")
		require.Error(t, err)
		assert.True(t, core.IsUserFacing(err))
		assert.Len(t, tc.backend.Rows("stock"), 4)
	})
}

func TestCopies(t *testing.T) {
	tc := newTestCLI(t, "")
	require.NoError(t, tc.run("copies", "3", "--isbn", "9780000000002", "--n", "2", "--format", "json"))
	res := decodeOut[resultJSON](t, tc)
	require.NotNil(t, res.Record)
	assert.Equal(t, "3", res.Record.Copies)

	tc = newTestCLI(t, "")
	assert.ErrorIs(t, tc.run("copies", "3", "--isbn", "9780000000001"), sheet.ErrRowNotFound)

	tc = newTestCLI(t, "")
	err := tc.run("copies", "1", "--isbn", "9780000000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row must be a data row number")
}

func TestRemove(t *testing.T) {
	t.Run("last copy deletes row", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.run("remove", "stock", "3", "--isbn", "9780000000002", "--format", "json"))
		assert.JSONEq(t, `{"record":null,"deleted":true}`, tc.out.String())
		assert.Len(t, tc.backend.Rows("stock"), 3)
	})

	t.Run("some copies", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.run("remove", "stock", "2", "--isbn", "9780000000001", "--n", "2", "--format", "text"))
		assert.Equal(t, "Removed: Dune (9780000000001), 1 copy in stock, row 2\n", tc.out.String())
	})

	t.Run("borrowed row", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.run("remove", "borrowed", "3", "--isbn", "9780000000004", "--format", "text"))
		assert.Equal(t, "Removed: row deleted\n", tc.out.String())
		assert.Len(t, tc.backend.Rows("borrowed"), 3)
	})

	t.Run("missing isbn flag", func(t *testing.T) {
		tc := newTestCLI(t, "")
		assert.Error(t, tc.run("remove", "stock", "2"))
	})
}

func TestCheckOut(t *testing.T) {
	tc := newTestCLI(t, "")
	require.NoError(t, tc.run("checkout", "2", "--isbn", "9780000000001", "--borrower", " Eve Adams ", "--format", "text"))
	assert.Equal(t, "Checked out to Eve Adams: Dune (9780000000001), 2 copies in stock, row 2\n", tc.out.String())

	borrowed := tc.backend.Rows("borrowed")
	require.Len(t, borrowed, 5)
	last := borrowed[4]
	assert.Equal(t, "9780000000001", last[0])
	assert.Equal(t, "Eve Adams", last[5])
	assert.Equal(t, "15-06-2024", last[6])
	assert.Equal(t, "29-06-2024", last[7])
}

func TestCheckOut_StaleRow(t *testing.T) {
	tc := newTestCLI(t, "")
	assert.ErrorIs(t, tc.run("checkout", "4", "--isbn", "9780000000001", "--borrower", "Eve"), sheet.ErrRowNotFound)
	assert.Len(t, tc.backend.Rows("borrowed"), 4)
}

func TestReturn(t *testing.T) {
	t.Run("stocked isbn is credited", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.run("return", "2", "--isbn", "9780000000003", "--format", "json"))
		res := decodeOut[resultJSON](t, tc)
		require.NotNil(t, res.Record)
		assert.Equal(t, "3", res.Record.Copies)
		assert.Equal(t, 4, res.Record.Row)
		assert.Len(t, tc.backend.Rows("borrowed"), 3)
	})

	t.Run("unstocked isbn is appended", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.NoError(t, tc.run("return", "3", "--isbn", "9780000000004", "--format", "text"))
		assert.Equal(t, "Returned: Persuasion (9780000000004), 1 copy in stock\n", tc.out.String())
		assert.Len(t, tc.backend.Rows("stock"), 5)
	})
}

// ----------------------------------------------------------------------------
// Output
// ----------------------------------------------------------------------------

func TestNewPrinter(t *testing.T) {
	var buf bytes.Buffer

	p, err := newPrinter(&buf, formatAuto)
	require.NoError(t, err)
	assert.True(t, p.json, "non-terminal writers get JSON")

	p, err = newPrinter(&buf, formatText)
	require.NoError(t, err)
	assert.False(t, p.json)

	_, err = newPrinter(&buf, "yaml")
	assert.ErrorContains(t, err, `unknown format "yaml"`)
}

func TestUserError(t *testing.T) {
	err := &core.ValidationError{Field: schema.ISBN, Value: "12", Message: "must be exactly 13 digits"}
	assert.Contains(t, userError(err), "(Code: ")

	assert.Equal(t, `unknown flag: --shelf`, userError(unknownFlag()))
}

func unknownFlag() error {
	tc := &cli{in: strings.NewReader(""), out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, svc: &core.Service{}}
	root := newRootCmd(tc)
	root.SetArgs([]string{"list", "stock", "--shelf"})
	return root.Execute()
}
