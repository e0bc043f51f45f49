package schema

import "sort"

// identity is the column prefix shared by both tables.
var identity = []FieldSpec{
	{Field: ISBN, Label: "ISBN", Type: FieldInteger, Match: MatchExact},
	{Field: Title, Label: "Title", Type: FieldText, Match: MatchSubstring},
	{Field: Author, Label: "Author", Type: FieldText, Match: MatchSubstring},
	{Field: Genre, Label: "Genre", Type: FieldText, Match: MatchSubstring},
	{Field: Year, Label: "Year", Type: FieldInteger, Match: MatchExact},
}

// StockFieldSpecs defines the columns of the stock table.
var StockFieldSpecs = withIdentity(
	FieldSpec{Field: Copies, Label: "Copies", Type: FieldInteger, Match: MatchExact},
)

// BorrowedFieldSpecs defines the columns of the borrowed table.
var BorrowedFieldSpecs = withIdentity(
	FieldSpec{Field: BorrowerName, Label: "Borrower_name", Type: FieldText, Match: MatchSubstring},
	FieldSpec{Field: BorrowDate, Label: "Borrow_date", Type: FieldDate, Match: MatchExact},
	FieldSpec{Field: DueDate, Label: "Due_date", Type: FieldDate, Match: MatchExact},
)

var (
	// Stock holds one row per title with a copies counter.
	Stock = Table{Key: "stock", Title: "stock", Fields: StockFieldSpecs}

	// Borrowed holds one row per copy currently lent out.
	Borrowed = Table{Key: "borrowed", Title: "borrowed", Fields: BorrowedFieldSpecs}
)

var tables = map[string]Table{
	Stock.Key:    Stock,
	Borrowed.Key: Borrowed,
}

func withIdentity(extra ...FieldSpec) []FieldSpec {
	specs := make([]FieldSpec, 0, len(identity)+len(extra))
	specs = append(specs, identity...)
	return append(specs, extra...)
}

// Get returns a table by key.
func Get(key string) (Table, bool) {
	t, ok := tables[key]
	return t, ok
}

// All returns every table sorted by key.
func All() []Table {
	result := make([]Table, 0, len(tables))
	for _, t := range tables {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}
