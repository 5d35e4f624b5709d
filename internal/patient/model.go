package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a clinic directory record. The integer id is the public
// identifier used by scheduling and prescriptions; UserID links to the
// auth account when one was provisioned.
type Patient struct {
	ID         int
	FirstName  string
	MiddleName *string
	LastName   string
	Email      *string
	Phone      *string
	Birthdate  *string // YYYY-MM-DD
	Sex        *string
	BuildingNo *string
	Street     *string
	Barangay   *string
	City       *string
	LastVisit  *string // YYYY-MM-DD, set by the attendance side effect
	UserID     *uuid.UUID
	CreatedAt  time.Time
}

// Summary is the list-view shape: normalized names plus computed age.
type Summary struct {
	ID         int     `json:"id"`
	FirstName  string  `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Age        *int    `json:"age"`
	LastVisit  *string `json:"last_visit"`
}

// CreateInput carries a new directory record. First and last name are
// required; everything else is optional.
type CreateInput struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Phone      string
	Birthdate  string
	Sex        string
	BuildingNo string
	Street     string
	Barangay   string
	City       string
	LastVisit  string
}

// UpdateInput is a partial patch with COALESCE semantics: nil leaves
// the stored value unchanged.
type UpdateInput struct {
	FirstName  *string
	MiddleName *string
	LastName   *string
	Email      *string
	Phone      *string
	Birthdate  *string
	Sex        *string
	BuildingNo *string
	Street     *string
	Barangay   *string
	City       *string
	LastVisit  *string
}
