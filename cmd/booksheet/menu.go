package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/spf13/cobra"
)

// errQuit ends the session when input runs out.
var errQuit = errors.New("quit")

type menuOption struct {
	label string
	run   func(s *session, ctx context.Context) error
}

var menuOptions = []menuOption{
	{"Add Book", (*session).addBook},
	{"Remove Book", (*session).removeBook},
	{"Check Out Book", (*session).checkOut},
	{"Return Book", (*session).returnBook},
	{"View Library Stock", (*session).viewStock},
	{"Check Overdue Borrowers", (*session).overdue},
	{"Exit", nil},
}

func newMenuCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &session{
				svc: c.svc,
				in:  bufio.NewScanner(c.in),
				out: c.out,
				p:   &printer{w: c.out},
			}
			return s.run(cmd.Context())
		},
	}
}

// session is one interactive run of the main menu.
type session struct {
	svc *core.Service
	in  *bufio.Scanner
	out io.Writer
	p   *printer
}

func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Library Main Menu")
	for {
		s.printMenu()
		choice, err := s.prompt(fmt.Sprintf("Select an option (1-%d)", len(menuOptions)))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		code, err := strconv.Atoi(choice)
		if err != nil || code < 1 || code > len(menuOptions) {
			fmt.Fprintf(s.out, "Incorrect code %q. Try again.\n", choice)
			continue
		}

		opt := menuOptions[code-1]
		if opt.run == nil {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		if err := opt.run(s, ctx); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, "Error:", userError(err))
		}
	}
}

func (s *session) printMenu() {
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nCODE\tOPTION")
	for i, opt := range menuOptions {
		fmt.Fprintf(tw, "%d\t%s\n", i+1, opt.label)
	}
	tw.Flush()
}

// prompt reads one trimmed line.
func (s *session) prompt(label string) (string, error) {
	fmt.Fprintf(s.out, "%s: ", label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *session) addBook(ctx context.Context) error {
	var rec core.Record
	for _, f := range schema.Stock.FieldNames() {
		v, err := s.prompt(fieldLabel(f))
		if err != nil {
			return err
		}
		rec.Set(f, v)
	}

	added, err := s.svc.StockIn(ctx, rec)
	if err != nil {
		return err
	}
	return s.p.result("Stocked", &added)
}

func (s *session) removeBook(ctx context.Context) error {
	rec, ok, err := s.pick(ctx, schema.Stock)
	if err != nil || !ok {
		return err
	}

	answer, err := s.prompt("Copies to remove, or 'all'")
	if err != nil {
		return err
	}
	all := strings.EqualFold(answer, "all")
	n := 1
	if !all && answer != "" {
		if n, err = strconv.Atoi(answer); err != nil {
			return fmt.Errorf("copies must be a number or 'all', got %q", answer)
		}
	}

	remaining, err := s.svc.RemoveBook(ctx, schema.Stock.Key, rec, n, all)
	if err != nil {
		return err
	}
	return s.p.result("Removed", remaining)
}

func (s *session) checkOut(ctx context.Context) error {
	rec, ok, err := s.pick(ctx, schema.Stock)
	if err != nil || !ok {
		return err
	}

	if rec.BorrowerName, err = s.prompt("Borrower name"); err != nil {
		return err
	}
	if rec.DueDate, err = s.prompt("Due date (dd-mm-yyyy, blank for default)"); err != nil {
		return err
	}

	remaining, err := s.svc.CheckOut(ctx, rec)
	if err != nil {
		return err
	}
	return s.p.result("Checked out to "+rec.BorrowerName, remaining)
}

func (s *session) returnBook(ctx context.Context) error {
	rec, ok, err := s.pick(ctx, schema.Borrowed)
	if err != nil || !ok {
		return err
	}

	credited, err := s.svc.Return(ctx, rec)
	if err != nil {
		return err
	}
	return s.p.result("Returned", &credited)
}

// viewStock lists one table, in sheet order or sorted by a field.
func (s *session) viewStock(ctx context.Context) error {
	name, err := s.prompt("Table (stock or borrowed, blank for stock)")
	if err != nil {
		return err
	}
	t := schema.Stock
	if name != "" {
		if t, err = tableArg(name); err != nil {
			return err
		}
	}

	by, err := s.prompt("Sort by field (blank for sheet order)")
	if err != nil {
		return err
	}
	var spec *core.SortSpec
	if by != "" {
		field, ok := schema.ParseField(by)
		if !ok || !t.Has(field) {
			return fmt.Errorf("%s has no field %q", t.Key, by)
		}
		order, err := s.prompt("Order (asc or desc, blank for asc)")
		if err != nil {
			return err
		}
		switch strings.ToLower(order) {
		case "", "asc":
			spec = &core.SortSpec{Field: field}
		case "desc":
			spec = &core.SortSpec{Field: field, Desc: true}
		default:
			return fmt.Errorf("order must be asc or desc, got %q", order)
		}
	}

	records, err := s.svc.List(ctx, t.Key, spec)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(s.out, "No books found in %s.\n", t.Key)
		return nil
	}

	fmt.Fprintf(s.out, "Found %d rows in %s, %s\n", len(records), t.Key, orderLabel(spec))
	return s.p.records(t, records)
}

func orderLabel(spec *core.SortSpec) string {
	if spec == nil {
		return "in sheet order"
	}
	dir := "ascending"
	if spec.Desc {
		dir = "descending"
	}
	return fmt.Sprintf("sorted by %s in %s order", spec.Field, dir)
}

func (s *session) overdue(ctx context.Context) error {
	today := s.svc.Today()
	records, err := s.svc.Overdue(ctx, today)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(s.out, "No books overdue on %s.\n", core.FormatDate(today))
		return nil
	}

	fmt.Fprintf(s.out, "%s overdue on %s\n", plural(strconv.Itoa(len(records)), "book", "books"), core.FormatDate(today))
	return s.p.records(schema.Borrowed, records)
}

// pick searches t and lets the user choose one of the matches by row. ok is
// false when nothing matched or the choice was left blank.
func (s *session) pick(ctx context.Context, t schema.Table) (core.Record, bool, error) {
	name, err := s.prompt("Search by field (blank for isbn)")
	if err != nil {
		return core.Record{}, false, err
	}
	field := schema.ISBN
	if name != "" {
		f, ok := schema.ParseField(name)
		if !ok {
			return core.Record{}, false, fmt.Errorf("unknown field %q", name)
		}
		field = f
	}

	query, err := s.prompt(fieldLabel(field))
	if err != nil {
		return core.Record{}, false, err
	}
	matches, err := s.svc.Search(ctx, t.Key, field, query)
	if err != nil {
		return core.Record{}, false, err
	}
	if len(matches) == 0 {
		fmt.Fprintln(s.out, "No matching books.")
		return core.Record{}, false, nil
	}
	if err := s.p.records(t, matches); err != nil {
		return core.Record{}, false, err
	}
	if len(matches) == 1 {
		return matches[0], true, nil
	}

	answer, err := s.prompt("Row")
	if err != nil || answer == "" {
		return core.Record{}, false, err
	}
	row, _ := strconv.Atoi(answer)
	for _, m := range matches {
		if m.CellRow == row {
			return m, true, nil
		}
	}
	return core.Record{}, false, fmt.Errorf("row %q is not one of the matches", answer)
}

func fieldLabel(f schema.Field) string {
	label := strings.ReplaceAll(string(f), "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}
