package schedule

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is the conflict outcome: the (date, time) slot is
	// already occupied. The storage-level unique index is the final
	// authority; the engine's pre-check only narrows the race window.
	ErrSlotTaken = errors.New("time slot already taken")
)

// Validation kinds, surfaced to clients as machine-readable codes.
const (
	KindMissingField      = "missing_field"
	KindInvalidDate       = "invalid_date"
	KindWeekendClosed     = "weekend_closed"
	KindPastDate          = "past_date"
	KindDayClosed         = "day_closed"
	KindServiceRestricted = "service_day_restricted"
	KindInvalidSlot       = "invalid_slot"
	KindInvalidTransition = "invalid_status_transition"
)

// ValidationError is a user-correctable booking failure. These map to
// HTTP 400 and are never retried automatically.
type ValidationError struct {
	Kind    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(kind, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Message: msg}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
