package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/clinicore/clinic-scheduling/internal/redis"
)

// Service is the scheduling engine. It is the only component that
// mutates appointments and day overrides, and it enforces every
// cross-cutting booking invariant.
type Service struct {
	repo   Repository
	locker redisclient.Locker
	now    func() time.Time // clinic-local
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, loc *time.Location, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		now:    func() time.Time { return time.Now().In(loc) },
		log:    log,
	}
}

// List returns appointments in [start, end], either bound optional.
func (s *Service) List(ctx context.Context, start, end string) ([]Appointment, error) {
	return s.repo.ListAppointments(ctx, start, end)
}

// Get returns one appointment or ErrAppointmentNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

// Create books a slot. Validation order is fixed; the first failing
// rule wins and every failure is user-correctable.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if in.Date == "" || in.Time == "" {
		return nil, validationErr(KindMissingField, "date and time are required")
	}
	if err := s.validateSlot(ctx, in.Date, in.Time, in.Reason, nil); err != nil {
		return nil, err
	}

	patientUUID, numericID := parsePatientRef(in.PatientRef)

	finalName := strings.TrimSpace(in.PatientName)
	if finalName == "" && numericID != nil {
		// Best-effort enrichment: a directory miss never blocks booking.
		if looked, err := s.repo.ResolvePatientName(ctx, *numericID); err != nil {
			s.log.Warn().Err(err).Int("patient_id", *numericID).Msg("patient name lookup failed")
		} else if looked != "" {
			finalName = looked
		}
	}

	appt := Appointment{
		ID:          uuid.New(),
		PatientID:   patientUUID,
		PatientName: nullIfEmpty(finalName),
		Reason:      nullIfEmpty(in.Reason),
		Date:        in.Date,
		Time:        in.Time,
		Status:      StatusScheduled,
	}

	var created *Appointment
	err := s.locker.WithSlotLock(ctx, in.Date, in.Time, func(lockCtx context.Context) error {
		taken, err := s.repo.HasConflict(lockCtx, in.Date, in.Time, nil)
		if err != nil {
			return fmt.Errorf("check slot conflict: %w", err)
		}
		if taken {
			return ErrSlotTaken
		}

		created, err = s.repo.InsertAppointment(lockCtx, appt)
		if err != nil {
			return err
		}

		s.logEvent(lockCtx, created.ID, EventAppointmentCreated, map[string]any{
			"date": created.Date,
			"time": created.Time,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			// Another request is mid-booking on this slot.
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	return created, nil
}

// Update applies a partial patch. A date/time change re-runs the full
// slot validation against the prospective schedule, excluding the
// appointment itself from the conflict check. When the resulting
// status is attended and a numeric patient identity is known, the
// patient directory's last-visit is written in the same transaction;
// if that write fails the whole update fails.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	existing, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	nextDate := existing.Date
	if in.Date != nil {
		nextDate = *in.Date
	}
	nextTime := existing.Time
	if in.Time != nil {
		nextTime = *in.Time
	}

	rescheduling := in.Date != nil || in.Time != nil
	if rescheduling {
		if nextDate == "" || nextTime == "" {
			return nil, validationErr(KindMissingField, "both date and time are required when changing schedule")
		}
		reason := ""
		if in.Reason != nil {
			reason = *in.Reason
		} else if existing.Reason != nil {
			reason = *existing.Reason
		}
		if err := s.validateSlot(ctx, nextDate, nextTime, reason, &id); err != nil {
			return nil, err
		}
	}

	var patientUUID *uuid.UUID
	numericID := in.PatientNumericID
	finalName := in.PatientName
	if in.PatientRef != nil {
		u, n := parsePatientRef(*in.PatientRef)
		patientUUID = u
		if n != nil {
			numericID = n
			if finalName == nil {
				if looked, err := s.repo.ResolvePatientName(ctx, *n); err != nil {
					s.log.Warn().Err(err).Int("patient_id", *n).Msg("patient name lookup failed")
				} else if looked != "" {
					finalName = &looked
				}
			}
		}
	}

	nextStatus, err := resolveStatus(existing.Status, in)
	if err != nil {
		return nil, err
	}

	patch := AppointmentPatch{
		PatientName: finalName,
		Reason:      in.Reason,
		PatientID:   patientUUID,
	}
	if in.Date != nil {
		patch.Date = &nextDate
	}
	if in.Time != nil {
		patch.Time = &nextTime
	}
	if nextStatus != existing.Status {
		patch.Status = &nextStatus
	}

	if patch.Empty() && !(nextStatus == StatusAttended && numericID != nil) {
		return existing, nil
	}

	var lastVisit *LastVisitUpdate
	if nextStatus == StatusAttended && numericID != nil {
		lastVisit = &LastVisitUpdate{PatientID: *numericID, Date: nextDate}
	}

	updated, err := s.repo.UpdateAppointment(ctx, id, patch, lastVisit)
	if err != nil {
		return nil, err
	}

	switch {
	case patch.Status != nil && nextStatus == StatusAttended:
		s.logEvent(ctx, updated.ID, EventAppointmentAttended, map[string]any{"date": updated.Date})
	case patch.Status != nil && nextStatus == StatusMissed:
		s.logEvent(ctx, updated.ID, EventAppointmentMissed, map[string]any{"date": updated.Date})
	case rescheduling:
		s.logEvent(ctx, updated.ID, EventAppointmentRescheduled, map[string]any{
			"date": updated.Date,
			"time": updated.Time,
		})
	}

	return updated, nil
}

// Delete removes an appointment and frees its slot. Deleting an absent
// id is not an error; the returned count is 0.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	count, err := s.repo.DeleteAppointment(ctx, id)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logEvent(ctx, id, EventAppointmentDeleted, map[string]any{})
	}
	return count, nil
}

// ToggleDayClosure marks a date administratively closed or reopens it.
// Existing appointments on a closed day are kept; closure only blocks
// new bookings. The toggle is idempotent and last-write-wins.
func (s *Service) ToggleDayClosure(ctx context.Context, date string, close bool) error {
	if date == "" {
		return validationErr(KindMissingField, "date is required (YYYY-MM-DD)")
	}
	if _, err := ParseDate(date); err != nil {
		return validationErr(KindInvalidDate, "date must be YYYY-MM-DD")
	}

	if err := s.repo.SetClosed(ctx, date, close); err != nil {
		return fmt.Errorf("set day closure: %w", err)
	}

	ev := EventDayReopened
	if close {
		ev = EventDayClosed
	}
	s.logEvent(ctx, uuid.Nil, ev, map[string]any{"date": date})
	return nil
}

// DayMap materializes the calendar view for every date in [start, end]:
// closure state, effective hours, capacity and booking counts.
func (s *Service) DayMap(ctx context.Context, start, end string) ([]DayState, error) {
	if start == "" || end == "" {
		return nil, validationErr(KindMissingField, "start and end are required (YYYY-MM-DD)")
	}
	startT, err := ParseDate(start)
	if err != nil {
		return nil, validationErr(KindInvalidDate, "start must be YYYY-MM-DD")
	}
	endT, err := ParseDate(end)
	if err != nil {
		return nil, validationErr(KindInvalidDate, "end must be YYYY-MM-DD")
	}

	counts, err := s.repo.CountsByDate(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate bookings: %w", err)
	}
	overrides, err := s.repo.ListOverrides(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list day overrides: %w", err)
	}
	byDate := make(map[string]DayOverride, len(overrides))
	for _, o := range overrides {
		byDate[o.Date] = o
	}

	var out []DayState
	for cur := startT; !cur.After(endT); cur = cur.AddDate(0, 0, 1) {
		ds := cur.Format(DateLayout)
		state := s.dayState(ds, counts[ds], byDate[ds])
		out = append(out, state)
	}
	return out, nil
}

// AvailableSlots lists the free slot times for one date. Closed,
// weekend, full and past days yield an empty list. For today, slots at
// or before the current clinic-local time are excluded.
func (s *Service) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	if date == "" {
		return nil, validationErr(KindMissingField, "date is required (YYYY-MM-DD)")
	}
	if _, err := ParseDate(date); err != nil {
		return nil, validationErr(KindInvalidDate, "date must be YYYY-MM-DD")
	}

	now := s.now()
	if IsWeekend(date) || IsPast(date, now) {
		return []string{}, nil
	}

	override, err := s.repo.GetOverride(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load day override: %w", err)
	}
	if override != nil && override.IsClosed {
		return []string{}, nil
	}

	open, close := effectiveHours(override)
	booked, err := s.repo.BookedTimes(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load booked times: %w", err)
	}
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	cutoff := ""
	if date == now.Format(DateLayout) {
		cutoff = now.Format(TimeLayout)
	}

	out := []string{}
	for _, t := range SlotsForDay(open, close) {
		if _, ok := taken[t]; ok {
			continue
		}
		if cutoff != "" && t <= cutoff {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// validateSlot runs the shared schedule rules for a prospective
// (date, time): weekend, past, closure, service-day and grid
// membership, then the conflict pre-check. The storage unique index
// re-checks the conflict at commit time.
func (s *Service) validateSlot(ctx context.Context, date, slotTime, reason string, excludeID *uuid.UUID) error {
	if _, err := ParseDate(date); err != nil {
		return validationErr(KindInvalidDate, "date must be YYYY-MM-DD")
	}
	if IsWeekend(date) {
		return validationErr(KindWeekendClosed, "No clinic hours on weekends.")
	}
	if IsPast(date, s.now()) {
		return validationErr(KindPastDate, "You cannot book in the past.")
	}

	override, err := s.repo.GetOverride(ctx, date)
	if err != nil {
		return fmt.Errorf("load day override: %w", err)
	}
	if override != nil && override.IsClosed {
		return validationErr(KindDayClosed, "Day is closed.")
	}

	if !IsServiceAllowedOnDate(reason, date) {
		return validationErr(KindServiceRestricted, "Therapy (youth) is only available on Wednesdays.")
	}

	open, close := effectiveHours(override)
	if !slotOnGrid(slotTime, open, close) {
		return validationErr(KindInvalidSlot, fmt.Sprintf("time %s is not a valid slot for this day", slotTime))
	}

	taken, err := s.repo.HasConflict(ctx, date, slotTime, excludeID)
	if err != nil {
		return fmt.Errorf("check slot conflict: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}
	return nil
}

func (s *Service) dayState(date string, booked int, override DayOverride) DayState {
	open, close := DefaultOpenHour, DefaultCloseHour
	if override.OpenHour != nil {
		open = *override.OpenHour
	}
	if override.CloseHour != nil {
		close = *override.CloseHour
	}
	cap := Capacity(open, close)
	return DayState{
		Date:        date,
		IsWeekend:   IsWeekend(date),
		IsClosed:    override.IsClosed,
		OpenHour:    open,
		CloseHour:   close,
		Capacity:    cap,
		BookedCount: booked,
		IsFull:      booked >= cap,
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("marshal event payload")
		data = nil
	}

	ev := EventLog{
		EventType: eventType,
		Payload:   data,
		CreatedAt: time.Now(),
	}
	if appointmentID != uuid.Nil {
		id := appointmentID
		ev.AppointmentID = &id
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("insert schedule event")
	}
}

func effectiveHours(override *DayOverride) (open, close int) {
	open, close = DefaultOpenHour, DefaultCloseHour
	if override != nil {
		if override.OpenHour != nil {
			open = *override.OpenHour
		}
		if override.CloseHour != nil {
			close = *override.CloseHour
		}
	}
	return open, close
}

func slotOnGrid(slotTime string, openHour, closeHour int) bool {
	for _, t := range SlotsForDay(openHour, closeHour) {
		if t == slotTime {
			return true
		}
	}
	return false
}

// resolveStatus normalizes the status portion of a patch: attended and
// missed shortcut flags win over an explicit status value, and a
// terminal row never silently returns to scheduled.
func resolveStatus(current Status, in UpdateInput) (Status, error) {
	next := current
	if next == "" {
		next = StatusScheduled
	}

	if in.Status != nil {
		requested := Status(*in.Status)
		if !ValidStatus(requested) {
			return "", validationErr(KindInvalidTransition, fmt.Sprintf("unknown status %q", *in.Status))
		}
		if requested == StatusScheduled && current != StatusScheduled {
			return "", validationErr(KindInvalidTransition, "attended or missed appointments cannot return to scheduled; delete and rebook instead")
		}
		next = requested
	}

	if in.Attended != nil && *in.Attended {
		next = StatusAttended
	} else if in.Missed != nil && *in.Missed {
		next = StatusMissed
	}

	return next, nil
}

// parsePatientRef classifies the raw patient_id input: a UUID is
// stored on the appointment row, a numeric id refers to the patient
// directory and is used for name resolution and the last-visit side
// effect, anything else is ignored.
func parsePatientRef(ref string) (*uuid.UUID, *int) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	if u, err := uuid.Parse(ref); err == nil {
		return &u, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 0 && !strings.ContainsAny(ref, "+-. ") {
		return nil, &n
	}
	return nil, nil
}
