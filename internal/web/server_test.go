package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/booksheet/internal/config"
	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Backend:  config.BackendConfig{Kind: config.BackendMemory},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *sheet.MemoryBackend) {
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

	srv := NewServer(svc, cfg)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, backend
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func rowsOf(recs []RecordResponse) []int {
	rows := make([]int, len(recs))
	for i, r := range recs {
		rows[i] = r.Row
	}
	return rows
}

// ----------------------------------------------------------------------------
// Read routes
// ----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestHealth_BackendDown(t *testing.T) {
	srv, backend := newTestServer(t, testConfig())
	backend.FailNext(sheet.OpReadRow, nil)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","code":"BE003"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders_CSPDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Security.EnableCSP = false
	srv, _ := newTestServer(t, cfg)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestListTables(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)

	tables := decode[[]TableInfo](t, rec)
	require.Len(t, tables, 2)
	assert.Equal(t, "borrowed", tables[0].Key)
	assert.Equal(t, "stock", tables[1].Key)
	assert.Equal(t, []string{"ISBN", "Title", "Author", "Genre", "Year", "Copies"}, tables[1].Headers)
	assert.Contains(t, tables[0].Fields, "borrower_name")
}

func TestListRecords(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	tests := []struct {
		name     string
		target   string
		wantRows []int
	}{
		{"sheet order", "/api/stock/records", []int{2, 3, 4}},
		{"year desc", "/api/stock/records?sort=year&dir=desc", []int{3, 2, 4}},
		{"title asc", "/api/stock/records?sort=title", []int{2, 3, 4}},
		{"borrowed by due date", "/api/borrowed/records?sort=due_date", []int{4, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantRows, rowsOf(decode[[]RecordResponse](t, rec)))
		})
	}
}

func TestListRecords_Errors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"unknown table", "/api/members/records", http.StatusNotFound, "TBL002"},
		{"unknown sort field", "/api/stock/records?sort=pages", http.StatusBadRequest, "VAL001"},
		{"field not in table", "/api/stock/records?sort=due_date", http.StatusBadRequest, "VAL001"},
		{"bad direction", "/api/stock/records?sort=year&dir=up", http.StatusBadRequest, "VAL001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestListRecords_BackendError(t *testing.T) {
	srv, backend := newTestServer(t, testConfig())
	backend.FailNext(sheet.OpReadAll, nil)

	rec := do(t, srv, http.MethodGet, "/api/stock/records", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "BE003", decode[ErrorResponse](t, rec).Code)
}

func TestSearch(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/stock/search?field=title&q=dune", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2, 3}, rowsOf(decode[[]RecordResponse](t, rec)))

	rec = do(t, srv, http.MethodGet, "/api/borrowed/search?field=Borrower_name&q=bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]RecordResponse](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Persuasion", got[0].Title)
	assert.Equal(t, 3, got[0].Row)
}

func TestSearch_Errors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		target string
	}{
		{"missing field", "/api/stock/search?q=dune"},
		{"unknown field", "/api/stock/search?field=pages&q=1"},
		{"field not in table", "/api/stock/search?field=borrower_name&q=bob"},
		{"invalid isbn", "/api/stock/search?field=isbn&q=123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "VAL001", decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestOverdue(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/overdue", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]RecordResponse](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "Dan Brown", got[0].BorrowerName)
	assert.Equal(t, "Alice Smith", got[1].BorrowerName)
}

// ----------------------------------------------------------------------------
// Write routes
// ----------------------------------------------------------------------------

func TestStockIn(t *testing.T) {
	srv, backend := newTestServer(t, testConfig())

	t.Run("new isbn appends", func(t *testing.T) {
		body := `{"isbn":"978-0-00-000000-9","title":"Middlemarch","author":"George Eliot","genre":"Classic","year":"1871","copies":"2"}`
		rec := do(t, srv, http.MethodPost, "/api/stock", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rows := backend.Rows("stock")
		assert.Equal(t, []string{"9780000000009", "Middlemarch", "George Eliot", "Classic", "1871", "2"}, rows[len(rows)-1])
	})

	t.Run("existing isbn adds copies", func(t *testing.T) {
		body := `{"isbn":"9780000000001","title":"Dune","author":"Frank Herbert","genre":"Sci-Fi","year":"1965","copies":"2"}`
		rec := do(t, srv, http.MethodPost, "/api/stock", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[MutationResponse](t, rec)
		require.NotNil(t, got.Record)
		assert.Equal(t, "5", got.Record.Copies)
		assert.Equal(t, 2, got.Record.Row)
	})

	t.Run("invalid record", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/stock", `{"isbn":"12","title":"X","author":"Y","genre":"Z","year":"3000"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VAL001", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("unknown json field", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/stock", `{"isbn":"9780000000001","pages":12}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/stock", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Message, "empty")
	})
}

func TestAddCopies(t *testing.T) {
	srv, backend := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/stock/2/copies", `{"isbn":"9780000000001","n":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "5", decode[MutationResponse](t, rec).Record.Copies)
	assert.Equal(t, "5", backend.Rows("stock")[1][5])

	t.Run("stale row", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/stock/3/copies", `{"isbn":"9780000000001","n":1}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "ROW001", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("out of range", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/stock/2/copies", `{"isbn":"9780000000001","n":11}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad row", func(t *testing.T) {
		for _, row := range []string{"abc", "1", "0"} {
			rec := do(t, srv, http.MethodPost, "/api/stock/"+row+"/copies", `{"isbn":"9780000000001","n":1}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "row %s", row)
		}
	})

	t.Run("form post", func(t *testing.T) {
		form := url.Values{"isbn": {"9780000000003"}, "n": {"1"}}
		req := httptest.NewRequest(http.MethodPost, "/api/stock/4/copies", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "3", backend.Rows("stock")[3][5])
	})
}

func TestRemove(t *testing.T) {
	srv, backend := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/stock/2/remove", `{"isbn":"9780000000001"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[MutationResponse](t, rec)
	assert.False(t, got.Deleted)
	assert.Equal(t, "2", got.Record.Copies)

	rec = do(t, srv, http.MethodPost, "/api/stock/2/remove", `{"isbn":"9780000000001","totally":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[MutationResponse](t, rec).Deleted)
	assert.Len(t, backend.Rows("stock"), 3)

	rec = do(t, srv, http.MethodPost, "/api/borrowed/2/remove", `{"isbn":"9780000000003"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[MutationResponse](t, rec).Deleted)
	assert.Len(t, backend.Rows("borrowed"), 3)
}

func TestCheckOut(t *testing.T) {
	srv, backend := newTestServer(t, testConfig())

	// Dune Messiah has one copy, so its stock row goes away.
	rec := do(t, srv, http.MethodPost, "/api/stock/3/checkout", `{"isbn":"9780000000002","borrower_name":"Eve Adams"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[MutationResponse](t, rec).Deleted)

	borrowed := backend.Rows("borrowed")
	assert.Equal(t,
		[]string{"9780000000002", "Dune Messiah", "Frank Herbert", "Sci-Fi", "1969", "Eve Adams", "15-06-2024", "29-06-2024"},
		borrowed[len(borrowed)-1])
	assert.Len(t, backend.Rows("stock"), 3)

	t.Run("missing borrower", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/stock/2/checkout", `{"isbn":"9780000000001"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("partial failure", func(t *testing.T) {
		backend.FailNext(sheet.OpWriteCell, nil)
		rec := do(t, srv, http.MethodPost, "/api/stock/2/checkout", `{"isbn":"9780000000001","borrower_name":"Fay Green","due_date":"01-07-2024"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())

		got := decode[ErrorResponse](t, rec)
		assert.Equal(t, "PART001", got.Code)
		assert.Contains(t, got.Message, "Fay Green")
	})
}

func TestReturn(t *testing.T) {
	srv, backend := newTestServer(t, testConfig())

	// Persuasion is not in stock, so it comes back as a new row with the
	// identity read from the borrowed row.
	rec := do(t, srv, http.MethodPost, "/api/borrowed/3/return", `{"isbn":"9780000000004"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[MutationResponse](t, rec)
	require.NotNil(t, got.Record)
	assert.Equal(t, "Persuasion", got.Record.Title)
	assert.Equal(t, "1", got.Record.Copies)

	stock := backend.Rows("stock")
	assert.Equal(t, []string{"9780000000004", "Persuasion", "Jane Austen", "Classic", "1817", "1"}, stock[len(stock)-1])
	assert.Len(t, backend.Rows("borrowed"), 3)

	t.Run("stale row", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/borrowed/3/return", `{"isbn":"9780000000004"}`)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
		assert.Equal(t, "ROW001", decode[ErrorResponse](t, rec).Code)
	})
}

// ----------------------------------------------------------------------------
// Auth and rate limiting
// ----------------------------------------------------------------------------

func TestWriteRoutes_RequireAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret-1"}
	srv, _ := newTestServer(t, cfg)

	body := `{"isbn":"9780000000001","n":1}`

	rec := do(t, srv, http.MethodPost, "/api/stock/2/copies", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/stock/2/copies", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer wrong")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/stock/2/copies", strings.NewReader(body))
	req.Header.Set("X-API-Key", "secret-1")
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Reads stay open.
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/stock/records", "").Code)
}

func TestRateLimiter(t *testing.T) {
	now := testNow
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     2,
		window:   time.Minute,
		now:      func() time.Time { return now },
		done:     make(chan struct{}),
	}

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "visitors are independent")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"), "window reset")
}

func TestRateLimiter_Middleware(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
	srv, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "").Code)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
}

func TestWriteGate(t *testing.T) {
	g := newWriteGate(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, g.acquire(ctx))
	assert.True(t, g.busy())
	assert.ErrorIs(t, g.acquire(ctx), errWriteBusy)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, g.acquire(cancelled), context.Canceled)

	g.release()
	assert.False(t, g.busy())
	require.NoError(t, g.acquire(ctx))
	g.release()
}

func TestWriteGate_Drain(t *testing.T) {
	g := newWriteGate(time.Second)
	require.NoError(t, g.acquire(context.Background()))

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.drain(short), context.DeadlineExceeded)

	g.release()
	require.NoError(t, g.drain(context.Background()))
	assert.True(t, g.busy(), "drained gate stays closed")
}

func TestWriteGate_Middleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.WriteWait = 20 * time.Millisecond
	srv, backend := newTestServer(t, cfg)

	require.NoError(t, srv.gate.acquire(context.Background()))
	rec := do(t, srv, http.MethodPost, "/api/stock/3/copies", `{"isbn":"9780000000002","n":1}`)
	srv.gate.release()

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "BUSY001", decode[ErrorResponse](t, rec).Code)
	assert.Equal(t, "1", backend.Rows("stock")[2][5])

	// Reads never wait for the gate.
	require.NoError(t, srv.gate.acquire(context.Background()))
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/stock/records", "").Code)
	srv.gate.release()

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/stock/3/copies", `{"isbn":"9780000000002","n":1}`).Code)
}

// ----------------------------------------------------------------------------
// Pages
// ----------------------------------------------------------------------------

func TestStockPage(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "<td>Dune Messiah</td>")
	assert.Contains(t, body, `data-row="4"`)
	assert.Contains(t, body, `aria-current="page">Stock`)
}

func TestStockPage_Search(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/?field=author&q=austen", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<td>Emma</td>")
	assert.NotContains(t, body, "<td>Dune</td>")
	assert.Contains(t, body, `value="austen"`)

	rec = do(t, srv, http.MethodGet, "/?field=title&q=zzz", "")
	assert.Contains(t, rec.Body.String(), "No books match the search.")
}

func TestStockPage_Error(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/?field=pages&q=1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="alert alert-error"`)
	assert.Contains(t, rec.Body.String(), "<html")

	req := httptest.NewRequest(http.MethodGet, "/?field=pages&q=1", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<html")
	assert.Contains(t, rr.Body.String(), "VAL001")
}

func TestOverduePage(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/overdue", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	dan := strings.Index(body, "Dan Brown")
	alice := strings.Index(body, "Alice Smith")
	require.True(t, dan > 0 && alice > 0, body)
	assert.Less(t, dan, alice, "earliest due first")
	assert.NotContains(t, body, "Bob Jones")
}

// ----------------------------------------------------------------------------
// Error mapping
// ----------------------------------------------------------------------------

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &core.ValidationError{Message: "x"}, http.StatusBadRequest},
		{"validation list", core.ValidationErrors{{Message: "x"}}, http.StatusBadRequest},
		{"duplicate", &core.DuplicateISBNError{ISBN: "1", CellRow: 2}, http.StatusConflict},
		{"unknown table", core.ErrUnknownTable, http.StatusNotFound},
		{"row", &sheet.RowNotFoundError{Table: "stock", Row: 4}, http.StatusNotFound},
		{"header", &sheet.HeaderNotFoundError{Table: "stock", Header: "ISBN"}, http.StatusNotFound},
		{"backend", &sheet.BackendError{Op: sheet.OpReadAll, Kind: sheet.KindPermission}, http.StatusBadGateway},
		{"partial", &core.PartialFailureError{Op: "return", Err: &sheet.BackendError{}}, http.StatusInternalServerError},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", http.ErrHandlerTimeout, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
