package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-scheduling/internal/inventory"
	"github.com/clinicore/clinic-scheduling/internal/patient"
	"github.com/clinicore/clinic-scheduling/internal/prescription"
	"github.com/clinicore/clinic-scheduling/internal/schedule"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandleErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"slot taken", schedule.ErrSlotTaken, http.StatusConflict, "slot_taken"},
		{"appointment missing", schedule.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{"patient missing", patient.ErrPatientNotFound, http.StatusNotFound, "patient_not_found"},
		{"stock missing", inventory.ErrItemNotFound, http.StatusNotFound, "stock_not_found"},
		{"duplicate medicine", inventory.ErrDuplicateMedicine, http.StatusConflict, "duplicate_medicine"},
		{"rx invalid quantity", prescription.ErrInvalidQuantity, http.StatusBadRequest, "invalid_request"},
		{"unknown medicine", &prescription.UnknownMedicineError{Name: "X"}, http.StatusBadRequest, "unknown_medicine"},
		{"insufficient stock", &prescription.InsufficientStockError{Name: "X", Requested: 5, Available: 1}, http.StatusBadRequest, "insufficient_stock"},
		{"opaque", errors.New("pg down"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Error)
		})
	}
}

func TestHandleErrorValidationCarriesKind(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, &schedule.ValidationError{Kind: "weekend_closed", Message: "No clinic hours on weekends."})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "weekend_closed", body.Error)
	assert.Equal(t, "No clinic hours on weekends.", body.Details)
}

func TestHandleErrorNeverLeaksInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	body := decodeError(t, rec)
	assert.Equal(t, "internal_error", body.Error)
	assert.NotContains(t, body.Details, "10.0.0.5")
}
