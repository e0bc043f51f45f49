package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/schema"
	"golang.org/x/term"
)

const (
	formatAuto = "auto"
	formatText = "text"
	formatJSON = "json"
)

// recordJSON is a record with the row it was read from, which is what the
// row-based commands take as their argument.
type recordJSON struct {
	core.Record
	Row int `json:"row"`
}

type resultJSON struct {
	Record  *recordJSON `json:"record"`
	Deleted bool        `json:"deleted"`
}

// printer renders command results as aligned text or JSON.
type printer struct {
	w    io.Writer
	json bool
}

// newPrinter resolves the auto format: text on a terminal, JSON otherwise.
func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case formatJSON:
		return &printer{w: w, json: true}, nil
	case formatText:
		return &printer{w: w}, nil
	case formatAuto, "":
		return &printer{w: w, json: !isTerminal(w)}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want auto, text or json)", format)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// records prints a table of records in t's column layout.
func (p *printer) records(t schema.Table, records []core.Record) error {
	if p.json {
		out := make([]recordJSON, len(records))
		for i, rec := range records {
			out[i] = recordJSON{Record: rec, Row: rec.CellRow}
		}
		return p.encode(out)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(p.w, "No records.")
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\t"+strings.ToUpper(strings.Join(t.Headers(), "\t")))
	fields := t.FieldNames()
	for _, rec := range records {
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = rec.Get(f)
		}
		fmt.Fprintln(tw, strconv.Itoa(rec.CellRow)+"\t"+strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// result prints the outcome of a mutation. A nil record means the row was
// deleted.
func (p *printer) result(action string, rec *core.Record) error {
	if p.json {
		if rec == nil {
			return p.encode(resultJSON{Deleted: true})
		}
		return p.encode(resultJSON{Record: &recordJSON{Record: *rec, Row: rec.CellRow}})
	}

	if rec == nil {
		_, err := fmt.Fprintf(p.w, "%s: row deleted\n", action)
		return err
	}

	line := fmt.Sprintf("%s: %s (%s)", action, rec.Title, rec.ISBN)
	if rec.Copies != "" {
		line += ", " + plural(rec.Copies, "copy", "copies") + " in stock"
	}
	if rec.CellRow > 0 {
		line += ", row " + strconv.Itoa(rec.CellRow)
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n, one, many string) string {
	if n == "1" {
		return n + " " + one
	}
	return n + " " + many
}

// userError formats err for the terminal. Errors the catalog knows about
// get their user message and code; anything else (flag parsing, usage) is
// printed as is.
func userError(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}
