package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/logging"
	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds mutation request bodies.
const maxBodySize = 64 << 10

// RecordResponse is a record plus the row it was read from. The row is
// what the mutation routes take in their path.
type RecordResponse struct {
	core.Record
	Row int `json:"row"`
}

// TableInfo describes one table for GET /api/tables.
type TableInfo struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Fields  []string `json:"fields"`
	Headers []string `json:"headers"`
}

// MutationResponse is returned by the write routes. Record is nil when the
// affected row was deleted.
type MutationResponse struct {
	Record  *RecordResponse `json:"record"`
	Deleted bool            `json:"deleted"`
}

// mutationRequest is the body of the write routes. The record fields
// identify the row (its ISBN must still match) or carry the new values.
type mutationRequest struct {
	core.Record
	N       int  `json:"n"`
	Totally bool `json:"totally"`
	Row     int  `json:"row"` // Echoed back from RecordResponse; the path row wins
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"code":   core.MapError(err).Code,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTables returns the layout of both tables.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	var tables []TableInfo
	for _, bt := range s.service.Tables().All() {
		tables = append(tables, TableInfo{
			Key:     bt.Key(),
			Title:   bt.Handle.Title(),
			Fields:  fieldNames(bt.Schema),
			Headers: bt.Schema.Headers(),
		})
	}
	writeJSON(w, http.StatusOK, tables)
}

// handleListRecords lists a table, optionally sorted by ?sort=field&dir=desc.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	spec, err := parseSort(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records, err := s.service.List(r.Context(), chi.URLParam(r, "table"), spec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(records))
}

// handleSearch searches a table by ?field=&q=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	field, err := parseFieldParam(r, "field")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records, err := s.service.Search(r.Context(), chi.URLParam(r, "table"), field, r.URL.Query().Get("q"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(records))
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.Overdue(r.Context(), s.service.Today())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(records))
}

// handleStockIn adds a book to stock, crediting the existing row for its
// ISBN if there is one.
func (s *Server) handleStockIn(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMutation(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	rec, err := s.service.StockIn(ctx, req.Record)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Record: toResponse(rec)})
}

func (s *Server) handleAddCopies(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRowMutation(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	rec, err := s.service.AddCopies(ctx, req.Record, req.N)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Record: toResponse(rec)})
}

// handleRemove takes copies out of, or deletes, a row of table.
func (s *Server) handleRemove(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRowMutation(w, r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if req.N == 0 {
			req.N = 1
		}

		ctx := WithRequestMetadata(r.Context(), r)
		remaining, err := s.service.RemoveBook(ctx, table, req.Record, req.N, req.Totally)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResult(remaining))
	}
}

// handleCheckOut lends one copy of a stock row to borrower_name.
func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRowMutation(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Identity fields come from the live row so callers only send the isbn.
	live, err := s.service.At(r.Context(), schema.Stock.Key, req.CellRow, req.ISBN)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	live.BorrowerName = req.BorrowerName
	live.DueDate = req.DueDate

	ctx := WithRequestMetadata(r.Context(), r)
	remaining, err := s.service.CheckOut(ctx, live)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResult(remaining))
}

// handleReturn takes back a borrowed row and responds with the credited
// stock record.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRowMutation(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	live, err := s.service.At(r.Context(), schema.Borrowed.Key, req.CellRow, req.ISBN)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	credited, err := s.service.Return(ctx, live)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Record: toResponse(credited)})
}

// ----------------------------------------------------------------------------
// Request parsing
// ----------------------------------------------------------------------------

// parseSort reads ?sort= and ?dir=. No sort field means sheet order.
func parseSort(r *http.Request) (*core.SortSpec, error) {
	if r.URL.Query().Get("sort") == "" {
		return nil, nil
	}
	field, err := parseFieldParam(r, "sort")
	if err != nil {
		return nil, err
	}

	switch dir := strings.ToLower(r.URL.Query().Get("dir")); dir {
	case "", "asc":
		return &core.SortSpec{Field: field}, nil
	case "desc":
		return &core.SortSpec{Field: field, Desc: true}, nil
	default:
		return nil, badRequest("dir must be asc or desc")
	}
}

func parseFieldParam(r *http.Request, name string) (schema.Field, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", badRequest(name + " is required")
	}
	field, ok := schema.ParseField(raw)
	if !ok {
		return "", badRequest("unknown field " + strconv.Quote(raw))
	}
	return field, nil
}

// decodeRowMutation decodes the body and takes CellRow from the {row} path
// parameter.
func decodeRowMutation(w http.ResponseWriter, r *http.Request) (mutationRequest, error) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 2 {
		return mutationRequest{}, badRequest("row must be a data row number (2 or more)")
	}

	req, err := decodeMutation(w, r)
	if err != nil {
		return mutationRequest{}, err
	}
	req.CellRow = row
	return req, nil
}

// decodeMutation reads a JSON body, or form values for HTML form posts.
func decodeMutation(w http.ResponseWriter, r *http.Request) (mutationRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		return decodeForm(r)
	}

	var req mutationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return mutationRequest{}, badRequest("request body is empty")
		}
		return mutationRequest{}, badRequest("invalid request body: " + err.Error())
	}
	return req, nil
}

func decodeForm(r *http.Request) (mutationRequest, error) {
	if err := r.ParseForm(); err != nil {
		return mutationRequest{}, badRequest("invalid form: " + err.Error())
	}

	var req mutationRequest
	for _, t := range schema.All() {
		for _, f := range t.FieldNames() {
			if v := r.PostForm.Get(string(f)); v != "" {
				req.Set(f, v)
			}
		}
	}

	if raw := r.PostForm.Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return mutationRequest{}, badRequest("n must be a number")
		}
		req.N = n
	}
	if raw := r.PostForm.Get("totally"); raw != "" {
		totally, err := strconv.ParseBool(raw)
		if err != nil {
			return mutationRequest{}, badRequest("totally must be true or false")
		}
		req.Totally = totally
	}
	return req, nil
}

// ----------------------------------------------------------------------------
// Response shaping
// ----------------------------------------------------------------------------

func toResponse(rec core.Record) *RecordResponse {
	return &RecordResponse{Record: rec, Row: rec.CellRow}
}

func toResponses(records []core.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, rec := range records {
		out[i] = *toResponse(rec)
	}
	return out
}

func mutationResult(remaining *core.Record) MutationResponse {
	if remaining == nil {
		return MutationResponse{Deleted: true}
	}
	return MutationResponse{Record: toResponse(*remaining)}
}
