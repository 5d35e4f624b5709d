package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrPrescriptionNotFound = errors.New("prescription not found")

// Repository contains all DB interactions for prescriptions. Creation
// and deletion run the stock adjustment and the prescription row
// change in one transaction; partial commits never happen.
type Repository interface {
	// CreateWithStockDecrement finds the stock row for the medication
	// (case-insensitive exact match, then first-token substring
	// fallback), verifies quantity, decrements and inserts. Returns
	// UnknownMedicineError or InsufficientStockError.
	CreateWithStockDecrement(ctx context.Context, rx Prescription) (*Prescription, *StockAfter, error)

	// DeleteWithStockRestore removes the prescription and returns its
	// quantity to the matching stock row, if one still exists.
	DeleteWithStockRestore(ctx context.Context, id uuid.UUID) (*StockAfter, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Prescription, error)
	SetFirstIntakeTime(ctx context.Context, id uuid.UUID, hhmm string) (*Prescription, error)
}
