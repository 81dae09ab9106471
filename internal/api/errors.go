package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roach88/statuslog/internal/store"
	"github.com/roach88/statuslog/internal/validation"
)

// Error codes returned in the error body.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// writeError writes the standard error body.
func writeError(w http.ResponseWriter, status int, code, message string, fields []validation.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message, Fields: fields}})
}

// writeServiceError maps a service error onto a status code.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	var conflict *store.ConflictError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, CodeValidationError, err.Error(), verr.Fields)
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, CodeConflict, err.Error(), nil)
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, err.Error(), nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
