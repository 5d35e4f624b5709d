package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/clinic-scheduling/internal/patient"
)

type PatientHandlers struct {
	svc *patient.Service
}

func NewPatientHandlers(svc *patient.Service) *PatientHandlers {
	return &PatientHandlers{svc: svc}
}

func (h *PatientHandlers) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *PatientHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func (h *PatientHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	id, err := h.svc.Create(r.Context(), patient.CreateInput{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Birthdate:  req.Birthdate,
		Sex:        req.Sex,
		BuildingNo: req.BuildingNo,
		Street:     req.Street,
		Barangay:   req.Barangay,
		City:       req.City,
		LastVisit:  req.LastVisit,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (h *PatientHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(w, r)
	if !ok {
		return
	}

	var req UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	p, err := h.svc.Update(r.Context(), id, patient.UpdateInput{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Birthdate:  req.Birthdate,
		Sex:        req.Sex,
		BuildingNo: req.BuildingNo,
		Street:     req.Street,
		Barangay:   req.Barangay,
		City:       req.City,
		LastVisit:  req.LastVisit,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

func (h *PatientHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func patientID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

type PatientResponse struct {
	ID         int     `json:"id"`
	FirstName  string  `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   string  `json:"last_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Birthdate  *string `json:"birthdate"`
	Sex        *string `json:"sex"`
	BuildingNo *string `json:"building_no"`
	Street     *string `json:"street"`
	Barangay   *string `json:"barangay"`
	City       *string `json:"city"`
	LastVisit  *string `json:"last_visit"`
}

func toPatientResponse(p *patient.Patient) PatientResponse {
	return PatientResponse{
		ID:         p.ID,
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		LastName:   p.LastName,
		Email:      p.Email,
		Phone:      p.Phone,
		Birthdate:  p.Birthdate,
		Sex:        p.Sex,
		BuildingNo: p.BuildingNo,
		Street:     p.Street,
		Barangay:   p.Barangay,
		City:       p.City,
		LastVisit:  p.LastVisit,
	}
}
