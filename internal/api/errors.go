package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-scheduling/internal/inventory"
	"github.com/clinicore/clinic-scheduling/internal/patient"
	"github.com/clinicore/clinic-scheduling/internal/prescription"
	"github.com/clinicore/clinic-scheduling/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleError maps domain errors onto the HTTP taxonomy: validation
// failures are 400, conflicts 409, missing records 404, everything
// else an opaque 500.
func handleError(w http.ResponseWriter, err error) {
	if ve, ok := schedule.AsValidation(err); ok {
		writeError(w, http.StatusBadRequest, ve.Kind, ve.Message)
		return
	}

	var unknownMed *prescription.UnknownMedicineError
	var shortStock *prescription.InsufficientStockError

	switch {
	case errors.Is(err, schedule.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", "Time slot already taken.")
	case errors.Is(err, schedule.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, patient.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, patient.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "missing_field", err.Error())
	case errors.Is(err, inventory.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "stock_not_found", err.Error())
	case errors.Is(err, inventory.ErrDuplicateMedicine):
		writeError(w, http.StatusConflict, "duplicate_medicine", err.Error())
	case errors.Is(err, inventory.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "missing_field", err.Error())
	case errors.Is(err, prescription.ErrPrescriptionNotFound):
		writeError(w, http.StatusNotFound, "prescription_not_found", err.Error())
	case errors.Is(err, prescription.ErrMissingFields),
		errors.Is(err, prescription.ErrInvalidQuantity),
		errors.Is(err, prescription.ErrInvalidPatient),
		errors.Is(err, prescription.ErrInvalidFirstTime):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &unknownMed):
		writeError(w, http.StatusBadRequest, "unknown_medicine", err.Error())
	case errors.As(err, &shortStock):
		writeError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
