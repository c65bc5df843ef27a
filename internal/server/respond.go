package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/osintlab/personscan/internal/aggregate"
	"github.com/osintlab/personscan/internal/export"
	"github.com/osintlab/personscan/internal/model"
	"github.com/osintlab/personscan/internal/store"
)

// errorResponse is the JSON error envelope shared by all endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
//
// Validation failures are the caller's fault (400). Missing reports
// are 404. An aggregation error means the fan-out itself died, not a
// single provider, so it is a 500. Export format errors distinguish
// the never-supported (400) from the not-yet-supported (501).
func writeError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	var aggregationErr *aggregate.AggregationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, export.ErrPDFNotImplemented):
		status = http.StatusNotImplemented
	case errors.Is(err, export.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.As(err, &aggregationErr):
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
