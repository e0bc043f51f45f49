package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/spf13/cobra"
)

func (c *cli) printer() (*printer, error) {
	return newPrinter(c.out, c.format)
}

func tableArg(name string) (schema.Table, error) {
	t, ok := schema.Get(strings.ToLower(name))
	if !ok {
		return schema.Table{}, fmt.Errorf("%w: %q", core.ErrUnknownTable, name)
	}
	return t, nil
}

func rowArg(s string) (int, error) {
	row, err := strconv.Atoi(s)
	if err != nil || row < 2 {
		return 0, fmt.Errorf("row must be a data row number (2 or more), got %q", s)
	}
	return row, nil
}

func newListCmd(c *cli) *cobra.Command {
	var (
		sortBy string
		desc   bool
	)
	cmd := &cobra.Command{
		Use:   "list <stock|borrowed>",
		Short: "List every row of a table",
		Example: `  booksheet list stock
  booksheet list borrowed --sort due_date`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tableArg(args[0])
			if err != nil {
				return err
			}

			var spec *core.SortSpec
			if sortBy != "" {
				field, ok := schema.ParseField(sortBy)
				if !ok {
					return fmt.Errorf("unknown sort field %q", sortBy)
				}
				spec = &core.SortSpec{Field: field, Desc: desc}
			}

			records, err := c.svc.List(cmd.Context(), t.Key, spec)
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.records(t, records)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "field to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort in descending order")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <stock|borrowed> <field> <query>",
		Short: "Find rows whose field matches a query",
		Long: `Title, author, genre and borrower_name match case-insensitive
substrings. Every other field must match exactly.`,
		Example: `  booksheet search stock title dune
  booksheet search borrowed isbn 978-0-00-000000-4`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tableArg(args[0])
			if err != nil {
				return err
			}
			field, ok := schema.ParseField(args[1])
			if !ok {
				return fmt.Errorf("unknown field %q", args[1])
			}

			records, err := c.svc.Search(cmd.Context(), t.Key, field, strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.records(t, records)
		},
	}
}

func newAddCmd(c *cli) *cobra.Command {
	var rec core.Record
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to stock",
		Long: `Adds copies to the stock row holding the ISBN, or appends a new
row when the ISBN is not stocked yet.`,
		Example: `  booksheet add --isbn 9780441013593 --title Dune --author "Frank Herbert" \
    --genre Sci-Fi --year 1965 --copies 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := c.svc.StockIn(cmd.Context(), rec)
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.result("Stocked", &added)
		},
	}
	cmd.Flags().StringVar(&rec.ISBN, "isbn", "", "13-digit ISBN")
	cmd.Flags().StringVar(&rec.Title, "title", "", "title")
	cmd.Flags().StringVar(&rec.Author, "author", "", "author")
	cmd.Flags().StringVar(&rec.Genre, "genre", "", "genre")
	cmd.Flags().StringVar(&rec.Year, "year", "", "publication year")
	cmd.Flags().StringVar(&rec.Copies, "copies", "1", "number of copies (1-10)")
	return cmd
}

func newCopiesCmd(c *cli) *cobra.Command {
	var (
		isbn string
		n    int
	)
	cmd := &cobra.Command{
		Use:     "copies <row>",
		Short:   "Add copies to a stock row",
		Example: `  booksheet copies 4 --isbn 9780441013593 --n 2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rowArg(args[0])
			if err != nil {
				return err
			}
			updated, err := c.svc.AddCopies(cmd.Context(), core.Record{ISBN: isbn, CellRow: row}, n)
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.result("Added copies", &updated)
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN the row must hold")
	cmd.Flags().IntVar(&n, "n", 1, "copies to add (1-10)")
	cmd.MarkFlagRequired("isbn")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	var (
		isbn string
		n    int
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "remove <stock|borrowed> <row>",
		Short: "Remove copies of a book, or its whole row",
		Long: `Takes copies out of a stock row; the row is deleted when none would
remain or --all is given. Rows of the borrowed table are always deleted.`,
		Example: `  booksheet remove stock 4 --isbn 9780441013593 --n 2
  booksheet remove stock 4 --isbn 9780441013593 --all`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tableArg(args[0])
			if err != nil {
				return err
			}
			row, err := rowArg(args[1])
			if err != nil {
				return err
			}

			remaining, err := c.svc.RemoveBook(cmd.Context(), t.Key, core.Record{ISBN: isbn, CellRow: row}, n, all)
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.result("Removed", remaining)
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN the row must hold")
	cmd.Flags().IntVar(&n, "n", 1, "copies to remove")
	cmd.Flags().BoolVar(&all, "all", false, "delete the whole row")
	cmd.MarkFlagRequired("isbn")
	return cmd
}

func newCheckOutCmd(c *cli) *cobra.Command {
	var isbn, borrower, due string
	cmd := &cobra.Command{
		Use:   "checkout <row>",
		Short: "Lend one copy of a stock row",
		Long: `Records the loan in the borrowed table, then takes one copy out of
stock. Without --due the book is due after the configured loan period.`,
		Example: `  booksheet checkout 4 --isbn 9780441013593 --borrower "Ada Lovelace" --due 30-06-2025`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rowArg(args[0])
			if err != nil {
				return err
			}

			rec, err := c.svc.At(cmd.Context(), schema.Stock.Key, row, isbn)
			if err != nil {
				return err
			}
			rec.BorrowerName = borrower
			rec.DueDate = due

			remaining, err := c.svc.CheckOut(cmd.Context(), rec)
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.result("Checked out to "+strings.TrimSpace(borrower), remaining)
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN the row must hold")
	cmd.Flags().StringVar(&borrower, "borrower", "", "borrower name")
	cmd.Flags().StringVar(&due, "due", "", "due date, dd-mm-yyyy")
	cmd.MarkFlagRequired("isbn")
	cmd.MarkFlagRequired("borrower")
	return cmd
}

func newReturnCmd(c *cli) *cobra.Command {
	var isbn string
	cmd := &cobra.Command{
		Use:     "return <row>",
		Short:   "Take back a borrowed book",
		Example: `  booksheet return 3 --isbn 9780441013593`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rowArg(args[0])
			if err != nil {
				return err
			}

			rec, err := c.svc.At(cmd.Context(), schema.Borrowed.Key, row, isbn)
			if err != nil {
				return err
			}
			credited, err := c.svc.Return(cmd.Context(), rec)
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.result("Returned", &credited)
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN the row must hold")
	cmd.MarkFlagRequired("isbn")
	return cmd
}

func newOverdueCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List borrowed books past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.svc.Overdue(cmd.Context(), c.svc.Today())
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.records(schema.Borrowed, records)
		},
	}
}
