package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
		check func(t *testing.T, tc *testCLI)
	}{
		{
			name:  "view stock then exit",
			input: []string{"5", "", "", "7"},
			want:  []string{"Library Main Menu", "View Library Stock", "Found 3 rows in stock, in sheet order", "Dune Messiah", "Goodbye!"},
		},
		{
			name:  "view borrowed sorted by due date descending",
			input: []string{"5", "borrowed", "due_date", "desc", "7"},
			want:  []string{"Found 3 rows in borrowed, sorted by due_date in descending order"},
			check: func(t *testing.T, tc *testCLI) {
				out := tc.out.String()
				persuasion := strings.Index(out, "Persuasion")
				emma := strings.Index(out, "Alice Smith")
				hobbit := strings.Index(out, "The Hobbit")
				assert.True(t, persuasion < emma && emma < hobbit, "order in:\n%s", out)
			},
		},
		{
			name:  "view rejects a field the table lacks",
			input: []string{"5", "stock", "due_date", "7"},
			want:  []string{`Error: stock has no field "due_date"`, "Goodbye!"},
		},
		{
			name:  "view rejects a bad order",
			input: []string{"5", "", "title", "up", "7"},
			want:  []string{`order must be asc or desc, got "up"`},
		},
		{
			name:  "check overdue borrowers",
			input: []string{"6", "7"},
			want:  []string{"Check Overdue Borrowers", "2 books overdue on 15-06-2024", "Dan Brown", "Alice Smith"},
			check: func(t *testing.T, tc *testCLI) {
				assert.NotContains(t, tc.out.String(), "Bob Jones")
			},
		},
		{
			name: "add book",
			input: []string{"1",
				"9780000000009", "Middlemarch", "George Eliot", "Classic", "1871", "2",
				"7"},
			want: []string{"Stocked: Middlemarch (9780000000009), 2 copies in stock"},
			check: func(t *testing.T, tc *testCLI) {
				assert.Len(t, tc.backend.Rows("stock"), 5)
			},
		},
		{
			name:  "remove picks a row among matches",
			input: []string{"2", "title", "dune", "3", "", "7"},
			want:  []string{"Removed: row deleted"},
			check: func(t *testing.T, tc *testCLI) {
				rows := tc.backend.Rows("stock")
				require.Len(t, rows, 3)
				assert.Equal(t, "Dune", rows[1][1])
				assert.Equal(t, "Emma", rows[2][1])
			},
		},
		{
			name:  "remove all copies",
			input: []string{"2", "", "9780000000001", "all", "7"},
			want:  []string{"Removed: row deleted"},
		},
		{
			name:  "check out single match",
			input: []string{"3", "title", "messiah", "Eve Adams", "", "7"},
			want:  []string{"Checked out to Eve Adams: row deleted"},
			check: func(t *testing.T, tc *testCLI) {
				borrowed := tc.backend.Rows("borrowed")
				require.Len(t, borrowed, 5)
				assert.Equal(t, "29-06-2024", borrowed[4][7])
			},
		},
		{
			name:  "return unstocked book",
			input: []string{"4", "borrower_name", "dan", "7"},
			want:  []string{"Returned: The Hobbit (9780000000005), 1 copy in stock"},
			check: func(t *testing.T, tc *testCLI) {
				assert.Len(t, tc.backend.Rows("borrowed"), 3)
			},
		},
		{
			name:  "no matches",
			input: []string{"4", "title", "ulysses", "7"},
			want:  []string{"No matching books.", "Goodbye!"},
		},
		{
			name:  "errors keep the session alive",
			input: []string{"1", "12", "X", "Y", "Z", "2000", "", "7"},
			want:  []string{"Error:", "(Code: ", "Goodbye!"},
		},
		{
			name:  "incorrect code",
			input: []string{"9", "abc", "7"},
			want:  []string{`Incorrect code "9"`, `Incorrect code "abc"`, "Goodbye!"},
		},
		{
			name:  "end of input exits",
			input: []string{"3", "title"},
			want:  []string{"Search by field"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestCLI(t, strings.Join(tt.input, "\n")+"\n")
			require.NoError(t, tc.run("menu"))

			out := tc.out.String()
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			if tt.check != nil {
				tt.check(t, tc)
			}
		})
	}
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Isbn", fieldLabel("isbn"))
	assert.Equal(t, "Borrower name", fieldLabel("borrower_name"))
}
