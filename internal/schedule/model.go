package schedule

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusAttended  Status = "attended"
	StatusMissed    Status = "missed"
)

// ValidStatus reports whether s is one of the three appointment states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusAttended, StatusMissed:
		return true
	}
	return false
}

// Appointment occupies exactly one (date, time) slot. PatientID is the
// patient's account UUID when known; PatientName is a denormalized
// display copy so listing never needs a join against the
// integer-keyed patient table. The copy is refreshed best-effort on
// write and is not guaranteed in sync.
type Appointment struct {
	ID          uuid.UUID
	PatientID   *uuid.UUID
	PatientName *string
	Reason      *string
	Date        string // YYYY-MM-DD
	Time        string // HH:mm:ss, slot-aligned
	Status      Status
}

// DayOverride is the persisted per-date administrative state. A date
// with no row is open with default hours; reopening a day deletes the
// row rather than storing is_closed=false.
type DayOverride struct {
	Date      string
	IsClosed  bool
	OpenHour  *int
	CloseHour *int
}

// DayState is the materialized calendar view for one date, merging the
// override row (if any) with booking counts.
type DayState struct {
	Date        string `json:"date"`
	IsWeekend   bool   `json:"isWeekend"`
	IsClosed    bool   `json:"isClosed"`
	OpenHour    int    `json:"openHour"`
	CloseHour   int    `json:"closeHour"`
	Capacity    int    `json:"capacity"`
	BookedCount int    `json:"bookedCount"`
	IsFull      bool   `json:"isFull"`
}

// CreateInput carries a booking request. PatientRef is the raw
// patient_id from the client: a UUID (stored on the row), a numeric
// patient-directory id (used only to look up a display name), or empty.
type CreateInput struct {
	Date        string
	Time        string
	PatientRef  string
	PatientName string
	Reason      string
}

// UpdateInput is a partial patch; nil means "leave unchanged". An
// empty PatientName or Reason clears the field, matching the admin
// frontend which sends empty strings rather than nulls.
type UpdateInput struct {
	Date             *string
	Time             *string
	PatientRef       *string
	PatientNumericID *int
	PatientName      *string
	Reason           *string
	Status           *string
	Attended         *bool
	Missed           *bool
}

// AppointmentPatch is the resolved set of column changes applied by
// the store. Nil fields are not touched.
type AppointmentPatch struct {
	Date        *string
	Time        *string
	PatientID   *uuid.UUID
	PatientName *string
	Reason      *string
	Status      *Status
}

func (p AppointmentPatch) Empty() bool {
	return p.Date == nil && p.Time == nil && p.PatientID == nil &&
		p.PatientName == nil && p.Reason == nil && p.Status == nil
}

// LastVisitUpdate is the attendance side effect: set the patient
// directory's last-visit date inside the same transaction as the
// appointment row update.
type LastVisitUpdate struct {
	PatientID int
	Date      string
}

const (
	EventAppointmentCreated     = "APPOINTMENT_CREATED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	EventAppointmentAttended    = "APPOINTMENT_ATTENDED"
	EventAppointmentMissed      = "APPOINTMENT_MISSED"
	EventAppointmentDeleted     = "APPOINTMENT_DELETED"
	EventDayClosed              = "DAY_CLOSED"
	EventDayReopened            = "DAY_REOPENED"
)

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
