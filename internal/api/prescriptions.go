package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/prescription"
)

type PrescriptionHandlers struct {
	svc *prescription.Service
}

func NewPrescriptionHandlers(svc *prescription.Service) *PrescriptionHandlers {
	return &PrescriptionHandlers{svc: svc}
}

type prescriptionCreated struct {
	Prescription *prescription.Prescription `json:"prescription"`
	Stock        *prescription.StockAfter   `json:"stock"`
}

func (h *PrescriptionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	rx, stock, err := h.svc.Create(r.Context(), prescription.CreateInput{
		PatientRef:     req.PatientID,
		MedicationName: req.MedicationName,
		TimesPerDay:    req.TimesPerDay,
		DurationDays:   req.DurationDays,
		TotalQuantity:  req.TotalQuantity,
		StartDate:      req.StartDate,
		Instructions:   req.Instructions,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, prescriptionCreated{Prescription: rx, Stock: stock})
}

func (h *PrescriptionHandlers) ListByPatient(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListByPatient(r.Context(), chi.URLParam(r, "patientRef"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *PrescriptionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_prescription_id", "id must be a valid UUID")
		return
	}

	stock, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stock": stock})
}

func (h *PrescriptionHandlers) SetFirstIntake(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_prescription_id", "id must be a valid UUID")
		return
	}

	var req FirstIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	rx, err := h.svc.SetFirstIntakeTime(r.Context(), id, req.FirstTime)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rx)
}
