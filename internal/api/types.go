package api

import (
	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/schedule"
)

type CreateAppointmentRequest struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Reason      string `json:"reason"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

type UpdateAppointmentRequest struct {
	PatientID        *string `json:"patient_id"`
	PatientNumericID *int    `json:"patient_numeric_id"`
	PatientName      *string `json:"patient_name"`
	Reason           *string `json:"reason"`
	Date             *string `json:"date"`
	Time             *string `json:"time"`
	Status           *string `json:"status"`
	Attended         *bool   `json:"attended"`
	Missed           *bool   `json:"missed"`
}

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   *uuid.UUID `json:"patient_id"`
	PatientName *string    `json:"patient_name"`
	Reason      *string    `json:"reason"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Status      string     `json:"status"`
}

func toAppointmentResponse(a *schedule.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		PatientName: a.PatientName,
		Reason:      a.Reason,
		Date:        a.Date,
		Time:        a.Time,
		Status:      string(a.Status),
	}
}

type ToggleDayRequest struct {
	Date  string `json:"date"`
	Close bool   `json:"close"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type CreatePatientRequest struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Birthdate  string `json:"birthdate"`
	Sex        string `json:"sex"`
	BuildingNo string `json:"building_no"`
	Street     string `json:"street"`
	Barangay   string `json:"barangay"`
	City       string `json:"city"`
	LastVisit  string `json:"last_visit"`
}

type UpdatePatientRequest struct {
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`
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

type UpsertStockRequest struct {
	MedicineName   string `json:"medicine_name"`
	Quantity       int    `json:"quantity"`
	ExpirationDate string `json:"expiration_date"`
	Mode           string `json:"mode"` // add (default) or set
}

type UpdateStockRequest struct {
	MedicineName   *string `json:"medicine_name"`
	Quantity       *int    `json:"quantity"`
	ExpirationDate *string `json:"expiration_date"`
}

type CreatePrescriptionRequest struct {
	PatientID      string `json:"patient_id"`
	MedicationName string `json:"medication_name"`
	TimesPerDay    int    `json:"times_per_day"`
	DurationDays   int    `json:"duration_days"`
	TotalQuantity  int    `json:"total_quantity"`
	StartDate      string `json:"start_date"`
	Instructions   string `json:"instructions"`
}

type FirstIntakeRequest struct {
	FirstTime string `json:"first_time"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
