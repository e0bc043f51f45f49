package web

import (
	"net/http"

	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/logging"
	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/web/templates"
	"github.com/a-h/templ"
)

// navFor builds the page header with href marked active.
func navFor(active string) []templates.Nav {
	nav := []templates.Nav{
		{Label: "Stock", Href: "/"},
		{Label: "Overdue", Href: "/overdue"},
	}
	for i := range nav {
		nav[i].Active = nav[i].Href == active
	}
	return nav
}

// handleStockPage lists stock, or the rows matching ?field=&q= when a query
// is given.
func (s *Server) handleStockPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := templates.TableView{
		Title:        "Stock",
		Nav:          navFor("/"),
		Headers:      schema.Stock.Headers(),
		SearchAction: "/",
		Fields:       fieldNames(schema.Stock),
		Field:        q.Get("field"),
		Query:        q.Get("q"),
		Empty:        "No books in stock.",
	}

	var (
		records []core.Record
		err     error
	)
	if view.Query != "" {
		field, perr := parseFieldParam(r, "field")
		if perr != nil {
			s.respondError(w, r, perr)
			return
		}
		records, err = s.service.Search(r.Context(), schema.Stock.Key, field, view.Query)
		view.Empty = "No books match the search."
	} else {
		var spec *core.SortSpec
		if spec, err = parseSort(r); err == nil {
			records, err = s.service.List(r.Context(), schema.Stock.Key, spec)
		}
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view.Rows = tableRows(schema.Stock, records)
	render(w, r, templates.TablePage(view))
}

// handleOverduePage lists borrowed books past their due date.
func (s *Server) handleOverduePage(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.Overdue(r.Context(), s.service.Today())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render(w, r, templates.TablePage(templates.TableView{
		Title:   "Overdue",
		Nav:     navFor("/overdue"),
		Headers: schema.Borrowed.Headers(),
		Rows:    tableRows(schema.Borrowed, records),
		Empty:   "Nothing is overdue.",
	}))
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

func tableRows(t schema.Table, records []core.Record) []templates.Row {
	fields := t.FieldNames()
	rows := make([]templates.Row, len(records))
	for i, rec := range records {
		cells := make([]string, len(fields))
		for j, f := range fields {
			cells[j] = rec.Get(f)
		}
		rows[i] = templates.Row{CellRow: rec.CellRow, Cells: cells}
	}
	return rows
}

func fieldNames(t schema.Table) []string {
	fields := t.FieldNames()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}
