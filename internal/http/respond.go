package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"grana/internal/core"
	applog "grana/internal/log"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

// moneyJSON renders an amount both ways: machine-friendly centavos and
// a pt-BR display string.
type moneyJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Formatted: core.FormatBRL(m.Cents)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldError, err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps a domain error onto its HTTP status and writes it.
func writeError(w http.ResponseWriter, err error) {
	writeErrorMessage(w, statusForError(err), err.Error())
}

// statusForError translates domain sentinels into status codes.
// Month and range errors are 400s: they describe a bad request for a
// view, not an invalid entity. Entity validation failures are 422s.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidMonth), errors.Is(err, core.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrInvalidPlan),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidTime),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyUser):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// methodNotAllowed writes a 405 with the Allow header set.
func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}
