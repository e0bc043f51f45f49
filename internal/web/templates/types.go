// Package templates holds the HTML components of the catalog UI. The
// components are written in .templ files; run `templ generate` after editing
// them and commit the _templ.go output.
package templates

//go:generate templ generate

// Nav is one entry of the page header.
type Nav struct {
	Label  string
	Href   string
	Active bool
}

// TableView is the data shown by TablePage.
type TableView struct {
	Title   string
	Nav     []Nav
	Headers []string
	Rows    []Row

	// Search form state; Fields lists the searchable field names.
	SearchAction string
	Fields       []string
	Field        string
	Query        string

	Empty string // Shown instead of the table when Rows is empty
}

// Row is one rendered record. CellRow is the sheet row it was read from.
type Row struct {
	CellRow int
	Cells   []string
}
