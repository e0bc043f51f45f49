package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error goes through respondError, which:
//  1. Maps the error via core.MapError to a user message and code
//  2. Picks the status code from the error type
//  3. Logs the technical error with the request id
//  4. Renders JSON for API and HTMX-less clients, or an HTML alert

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/booksheet/internal/core"
	"github.com/JonMunkholm/booksheet/internal/logging"
	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/JonMunkholm/booksheet/internal/web/templates"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user-facing form of it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, status)
	case wantsJSON(r):
		writeError(w, status, userMsg)
	default:
		renderErrorPage(w, r, userMsg, status)
	}
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var (
		partial *core.PartialFailureError
		dup     *core.DuplicateISBNError
		verr    *core.ValidationError
		verrs   core.ValidationErrors
		backend *sheet.BackendError
	)

	// PartialFailureError wraps the backend error of the failed step.
	switch {
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.As(err, &verrs), errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &dup):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnknownTable),
		errors.Is(err, sheet.ErrRowNotFound),
		errors.Is(err, sheet.ErrHeaderNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &backend):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// badRequest reports a malformed request as a validation error so it maps
// to VAL001 and a 400.
func badRequest(message string) error {
	return &core.ValidationError{Message: message}
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

// renderErrorPage renders the alert inside the page layout.
func renderErrorPage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := templates.Layout("Error", navFor(""), templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
