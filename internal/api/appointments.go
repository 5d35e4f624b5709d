package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/observability/metrics"
	"github.com/clinicore/clinic-scheduling/internal/schedule"
)

type AppointmentHandlers struct {
	svc *schedule.Service
	met *metrics.Metrics
}

func NewAppointmentHandlers(svc *schedule.Service, met *metrics.Metrics) *AppointmentHandlers {
	return &AppointmentHandlers{svc: svc, met: met}
}

func (h *AppointmentHandlers) List(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	appts, err := h.svc.List(r.Context(), start, end)
	if err != nil {
		handleError(w, err)
		return
	}

	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AppointmentHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	appt, err := h.svc.Create(r.Context(), schedule.CreateInput{
		Date:        req.Date,
		Time:        req.Time,
		PatientRef:  req.PatientID,
		PatientName: req.PatientName,
		Reason:      req.Reason,
	})
	if err != nil {
		h.countCreateFailure(err)
		handleError(w, err)
		return
	}

	h.met.AppointmentsCreated.Inc()
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (h *AppointmentHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	var req UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	appt, err := h.svc.Update(r.Context(), id, schedule.UpdateInput{
		Date:             req.Date,
		Time:             req.Time,
		PatientRef:       req.PatientID,
		PatientNumericID: req.PatientNumericID,
		PatientName:      req.PatientName,
		Reason:           req.Reason,
		Status:           req.Status,
		Attended:         req.Attended,
		Missed:           req.Missed,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	h.met.AttendanceTransitions.WithLabelValues(string(appt.Status)).Inc()
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *AppointmentHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	count, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: count})
}

func (h *AppointmentHandlers) DayMap(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	days, err := h.svc.DayMap(r.Context(), start, end)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (h *AppointmentHandlers) Slots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	slots, err := h.svc.AvailableSlots(r.Context(), date)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SlotsResponse{Date: date, Slots: slots})
}

func (h *AppointmentHandlers) ToggleDay(w http.ResponseWriter, r *http.Request) {
	var req ToggleDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	if err := h.svc.ToggleDayClosure(r.Context(), req.Date, req.Close); err != nil {
		handleError(w, err)
		return
	}

	h.met.DayClosureToggles.Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AppointmentHandlers) countCreateFailure(err error) {
	if errors.Is(err, schedule.ErrSlotTaken) {
		h.met.SlotConflicts.Inc()
		return
	}
	if ve, ok := schedule.AsValidation(err); ok {
		h.met.ValidationRejections.WithLabelValues(ve.Kind).Inc()
	}
}
