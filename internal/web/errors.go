package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with whatever the service layer returned; the
// error is mapped to a stable machine-readable code and an HTTP status,
// logged with full detail server-side, and returned to the client as a
// JSON envelope.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/lpn"
	"github.com/partstash/partstash/internal/parts"
	"github.com/partstash/partstash/internal/store"
)

// ErrorResponse represents the JSON structure for API error responses.
// Code is stable and machine-readable; Error is for humans. Headers is
// populated only for designator-column failures so clients can offer a
// manual column chooser.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Headers []string `json:"headers,omitempty"`
}

// respondError maps a service error to a status code and JSON envelope.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := mapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", resp.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondJSON(w, status, resp)
}

// mapError translates domain errors into HTTP status codes and stable
// error codes. Unknown errors become an opaque 500.
func mapError(err error) (int, ErrorResponse) {
	var (
		noCol    *parts.NoDesignatorColumnError
		locked   *parts.FieldLockedError
		invalid  *parts.InvalidPolicyError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: err.Error(),
			Code:  "UPLOAD_TOO_LARGE",
		}
	case errors.Is(err, bom.ErrEmptyInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "PARSE_EMPTY"}
	case errors.Is(err, bom.ErrNoHeaders):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "PARSE_NO_HEADERS"}
	case errors.As(err, &noCol):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:   noCol.Error(),
			Code:    "NO_DESIGNATOR_COLUMN",
			Headers: noCol.Headers,
		}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, ErrorResponse{Error: invalid.Error(), Code: "INVALID_POLICY"}
	case errors.As(err, &locked):
		return http.StatusConflict, ErrorResponse{Error: locked.Error(), Code: "FIELD_LOCKED"}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not found", Code: "NOT_FOUND"}
	case errors.Is(err, lpn.ErrMissingMPN):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "LPN_MISSING_MPN"}
	case errors.Is(err, lpn.ErrAlreadyAssigned):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "LPN_ALREADY_ASSIGNED"}
	case errors.Is(err, lpn.ErrSequenceExhausted):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "LPN_SEQUENCE_EXHAUSTED"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL"}
	}
}

// respondJSON writes v as a JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
