package prescription

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Prescription issues medication to a patient and decrements stock by
// TotalQuantity when created; deleting it returns the quantity.
// PatientID is the patient's account UUID (patients.user_id), not the
// numeric directory id.
type Prescription struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	MedicationName  string    `json:"medication_name"`
	TimesPerDay     int       `json:"times_per_day"`
	DurationDays    int       `json:"duration_days"`
	TotalQuantity   int       `json:"total_quantity"`
	StartDate       string    `json:"start_date"` // YYYY-MM-DD
	Instructions    *string   `json:"instructions"`
	FirstIntakeTime *string   `json:"first_intake_time"` // HH:mm
	CreatedAt       time.Time `json:"created_at"`
}

type CreateInput struct {
	PatientRef     string // numeric directory id or account UUID
	MedicationName string
	TimesPerDay    int
	DurationDays   int
	TotalQuantity  int
	StartDate      string
	Instructions   string
}

// StockAfter reports the inventory row state after a create or delete,
// so clients can show the remaining quantity without a second call.
type StockAfter struct {
	ID             int     `json:"id"`
	MedicineName   string  `json:"medicine_name"`
	Quantity       int     `json:"quantity"`
	ExpirationDate *string `json:"expiration_date"`
}

// UnknownMedicineError means no inventory row matched the medication.
type UnknownMedicineError struct {
	Name string
}

func (e *UnknownMedicineError) Error() string {
	return fmt.Sprintf("no stock found for %q; add it in stock first", e.Name)
}

// InsufficientStockError means the inventory row holds fewer units
// than the prescription needs.
type InsufficientStockError struct {
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Name, e.Requested, e.Available)
}
