package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"budgetapp/internal/core"
	applog "budgetapp/internal/log"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// writeJSON encodes v before sending headers so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("Encode response failed", applog.FieldError, err)
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorBody{Detail: "Internal server error"})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps a service error onto a status and detail. Client errors
// carry their own message; store and runtime faults are logged and hidden
// behind a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		validation  *core.ValidationError
		unsupported *core.UnsupportedFormatError
		missing     *core.MissingColumnError
		store       *core.StoreError
	)

	status, detail, errorType := http.StatusInternalServerError, "Internal server error", applog.ErrorTypeInternal
	switch {
	case errors.As(err, &validation):
		status, detail, errorType = http.StatusBadRequest, validation.Message, applog.ErrorTypeValidation
	case errors.As(err, &unsupported), errors.As(err, &missing):
		status, detail, errorType = http.StatusBadRequest, err.Error(), applog.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		status, detail, errorType = http.StatusNotFound, "Not found", applog.ErrorTypeNotFound
	case errors.Is(err, core.ErrSheetNotConfigured):
		status, detail, errorType = http.StatusServiceUnavailable, "Budget sheet import is not configured", applog.ErrorTypeUnavailable
	case errors.As(err, &store):
		errorType = applog.ErrorTypeDatabase
	}

	fields := applog.NewFields().
		WithErrorType(errorType).
		WithRequestID(requestID(r))
	if status >= 500 {
		s.events.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, fields)
	} else {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
			fields.WithError(err).WithOperation(op).ToSlice()...)
	}

	writeDetail(w, status, detail)
}
