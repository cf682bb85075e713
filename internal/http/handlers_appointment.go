package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"grana/internal/core"
	applog "grana/internal/log"
)

type createAppointmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
}

type appointmentJSON struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAppointmentJSON(a core.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Date:        a.Date.String(),
		Time:        a.TimeOfDay,
		Location:    a.Location,
		CreatedAt:   a.CreatedAt,
	}
}

func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAppointments(w, r)
	case http.MethodPost:
		s.createAppointment(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	var req createAppointmentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	appointment := core.Appointment{
		UserID:      userID,
		Title:       sanitizeInput(req.Title),
		Description: sanitizeInput(req.Description),
		Date:        date,
		TimeOfDay:   sanitizeInput(req.Time),
		Location:    sanitizeInput(req.Location),
		CreatedAt:   s.now().UTC(),
	}
	if err := appointment.Validate(); err != nil {
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	created, err := s.store.CreateAppointment(sctx, appointment)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create appointment",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	slog.InfoContext(ctx, "Appointment created",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldUserID, userID,
		"date", created.Date.String())
	writeJSON(w, http.StatusCreated, toAppointmentJSON(created))
}

// listAppointments returns the user's appointments, restricted to one
// month when year/month query parameters are present.
func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUserID(r)

	var year, month int
	filtered := monthFilterRequested(r)
	if filtered {
		var err error
		year, month, err = s.parseYearMonth(r)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	appointments, err := s.store.ListAppointments(sctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list appointments",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpList,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeError(w, err)
		return
	}

	out := make([]appointmentJSON, 0, len(appointments))
	for _, a := range appointments {
		if filtered && (a.Date.Year() != year || a.Date.Month() != month) {
			continue
		}
		out = append(out, toAppointmentJSON(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": out})
}

func (s *Server) handleAppointmentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	ctx := r.Context()
	userID := requestUserID(r)
	id, err := idFromPath(r.URL.Path, "/appointments/")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.store.DeleteAppointment(sctx, userID, id); err != nil {
		if statusForError(err) >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Failed to delete appointment",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldOperation, applog.OpDelete,
				applog.FieldUserID, userID,
				applog.FieldError, err)
		}
		writeError(w, err)
		return
	}

	slog.InfoContext(ctx, "Appointment deleted",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldUserID, userID,
		"id", id)
	w.WriteHeader(http.StatusNoContent)
}
