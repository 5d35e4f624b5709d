package schedule

import (
	"context"

	"github.com/google/uuid"
)

// Repository contains all DB interactions needed by the engine.
type Repository interface {
	// Appointments, ordered by date then time. Empty bounds are open.
	ListAppointments(ctx context.Context, start, end string) ([]Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// HasConflict reports whether any appointment occupies (date, time),
	// optionally excluding one id (self, when rescheduling).
	HasConflict(ctx context.Context, date, slotTime string, excludeID *uuid.UUID) (bool, error)

	// InsertAppointment returns ErrSlotTaken when the (date, time)
	// unique index rejects a concurrent duplicate.
	InsertAppointment(ctx context.Context, a Appointment) (*Appointment, error)

	// UpdateAppointment applies the patch and, when lastVisit is set,
	// the patient-directory last-visit write in one transaction.
	// Returns ErrAppointmentNotFound or ErrSlotTaken.
	UpdateAppointment(ctx context.Context, id uuid.UUID, patch AppointmentPatch, lastVisit *LastVisitUpdate) (*Appointment, error)

	// DeleteAppointment returns the number of removed rows (0 or 1).
	DeleteAppointment(ctx context.Context, id uuid.UUID) (int64, error)

	// BookedTimes lists occupied slot times for one date, ascending.
	BookedTimes(ctx context.Context, date string) ([]string, error)

	// CountsByDate aggregates bookings per date over [start, end].
	CountsByDate(ctx context.Context, start, end string) (map[string]int, error)

	// Day overrides.
	GetOverride(ctx context.Context, date string) (*DayOverride, error)
	ListOverrides(ctx context.Context, start, end string) ([]DayOverride, error)
	// SetClosed upserts the closure flag; closed=false deletes the
	// override row, returning the day to default-open default hours.
	SetClosed(ctx context.Context, date string, closed bool) error

	// ResolvePatientName looks up a display name in the patient
	// directory by numeric id. Returns "" when unknown.
	ResolvePatientName(ctx context.Context, numericID int) (string, error)

	// Event logging, best-effort.
	InsertEvent(ctx context.Context, ev EventLog) error
}
