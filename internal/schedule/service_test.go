package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/clinicore/clinic-scheduling/internal/redis"
)

// fakeRepo is an in-memory Repository mirroring the store's contract:
// one appointment per (date, time), overrides keyed by date, reopening
// deletes the override row.
type fakeRepo struct {
	appts      map[uuid.UUID]Appointment
	overrides  map[string]DayOverride
	names      map[int]string
	lastVisits map[int]string
	events     []EventLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		appts:      map[uuid.UUID]Appointment{},
		overrides:  map[string]DayOverride{},
		names:      map[int]string{},
		lastVisits: map[int]string{},
	}
}

func (r *fakeRepo) ListAppointments(_ context.Context, start, end string) ([]Appointment, error) {
	var out []Appointment
	for _, a := range r.appts {
		if start != "" && a.Date < start {
			continue
		}
		if end != "" && a.Date > end {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeRepo) GetAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *fakeRepo) HasConflict(_ context.Context, date, slotTime string, excludeID *uuid.UUID) (bool, error) {
	for id, a := range r.appts {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if a.Date == date && a.Time == slotTime {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) InsertAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	if taken, _ := r.HasConflict(ctx, a.Date, a.Time, nil); taken {
		return nil, ErrSlotTaken
	}
	r.appts[a.ID] = a
	return &a, nil
}

func (r *fakeRepo) UpdateAppointment(ctx context.Context, id uuid.UUID, patch AppointmentPatch, lastVisit *LastVisitUpdate) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if patch.Date != nil {
		a.Date = *patch.Date
	}
	if patch.Time != nil {
		a.Time = *patch.Time
	}
	if patch.Date != nil || patch.Time != nil {
		if taken, _ := r.HasConflict(ctx, a.Date, a.Time, &id); taken {
			return nil, ErrSlotTaken
		}
	}
	if patch.PatientID != nil {
		a.PatientID = patch.PatientID
	}
	if patch.PatientName != nil {
		a.PatientName = patch.PatientName
	}
	if patch.Reason != nil {
		a.Reason = patch.Reason
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	r.appts[id] = a
	if lastVisit != nil {
		r.lastVisits[lastVisit.PatientID] = lastVisit.Date
	}
	return &a, nil
}

func (r *fakeRepo) DeleteAppointment(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.appts[id]; !ok {
		return 0, nil
	}
	delete(r.appts, id)
	return 1, nil
}

func (r *fakeRepo) BookedTimes(_ context.Context, date string) ([]string, error) {
	var out []string
	for _, a := range r.appts {
		if a.Date == date {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountsByDate(_ context.Context, start, end string) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range r.appts {
		if a.Date >= start && a.Date <= end {
			out[a.Date]++
		}
	}
	return out, nil
}

func (r *fakeRepo) GetOverride(_ context.Context, date string) (*DayOverride, error) {
	o, ok := r.overrides[date]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *fakeRepo) ListOverrides(_ context.Context, start, end string) ([]DayOverride, error) {
	var out []DayOverride
	for _, o := range r.overrides {
		if o.Date >= start && o.Date <= end {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) SetClosed(_ context.Context, date string, closed bool) error {
	if !closed {
		delete(r.overrides, date)
		return nil
	}
	o := r.overrides[date]
	o.Date = date
	o.IsClosed = true
	r.overrides[date] = o
	return nil
}

func (r *fakeRepo) ResolvePatientName(_ context.Context, numericID int) (string, error) {
	return r.names[numericID], nil
}

func (r *fakeRepo) InsertEvent(_ context.Context, ev EventLog) error {
	r.events = append(r.events, ev)
	return nil
}

// Clock fixed to Tuesday 2025-06-10 14:05 clinic time.
var testNow = time.Date(2025, 6, 10, 14, 5, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewService(repo, redisclient.NoopLocker{}, time.UTC, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func requireValidationKind(t *testing.T, err error, kind string) {
	t.Helper()
	ve, ok := AsValidation(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Equal(t, kind, ve.Kind)
}

func TestCreateBooksSlot(t *testing.T) {
	svc, repo := newTestService(t)

	appt, err := svc.Create(context.Background(), CreateInput{
		Date:        wednesday,
		Time:        "09:00:00",
		PatientName: "Maria Santos",
		Reason:      "Consultation",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, "Maria Santos", *appt.PatientName)

	require.Len(t, repo.events, 1)
	assert.Equal(t, EventAppointmentCreated, repo.events[0].EventType)
}

func TestCreateValidationOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
		kind string
	}{
		{"missing fields", CreateInput{Date: "", Time: ""}, KindMissingField},
		{"garbage date", CreateInput{Date: "06/11/2025", Time: "09:00:00"}, KindInvalidDate},
		{"weekend", CreateInput{Date: saturday, Time: "09:00:00"}, KindWeekendClosed},
		{"past", CreateInput{Date: monday, Time: "09:00:00"}, KindPastDate},
		{"off-grid minutes", CreateInput{Date: wednesday, Time: "09:15:00"}, KindInvalidSlot},
		{"after close", CreateInput{Date: wednesday, Time: "17:00:00"}, KindInvalidSlot},
		{"before open", CreateInput{Date: wednesday, Time: "07:30:00"}, KindInvalidSlot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			requireValidationKind(t, err, tc.kind)
		})
	}
}

func TestCreateWeekendWinsOverOtherRules(t *testing.T) {
	svc, repo := newTestService(t)

	// Saturday is also closed by override and the time is off-grid;
	// the weekend rule still reports first.
	require.NoError(t, repo.SetClosed(context.Background(), saturday, true))
	_, err := svc.Create(context.Background(), CreateInput{Date: saturday, Time: "23:15:00"})
	requireValidationKind(t, err, KindWeekendClosed)
}

func TestCreateOnClosedDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.ToggleDayClosure(ctx, wednesday, true))

	_, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	requireValidationKind(t, err, KindDayClosed)

	// Reopening restores bookability.
	require.NoError(t, svc.ToggleDayClosure(ctx, wednesday, false))
	_, err = svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)
}

func TestCreateRestrictedServiceDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Date: thursday, Time: "09:00:00", Reason: "Therapy (youth)"})
	requireValidationKind(t, err, KindServiceRestricted)

	_, err = svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00", Reason: "Therapy (youth)"})
	require.NoError(t, err)
}

func TestCreateSlotConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "10:00:00"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Date: wednesday, Time: "10:00:00"})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// The same time on another day is fine.
	_, err = svc.Create(ctx, CreateInput{Date: thursday, Time: "10:00:00"})
	require.NoError(t, err)
}

func TestCreateResolvesNumericPatientRef(t *testing.T) {
	svc, repo := newTestService(t)
	repo.names[42] = "Juan Dela Cruz"

	appt, err := svc.Create(context.Background(), CreateInput{
		Date: wednesday, Time: "11:00:00", PatientRef: "42",
	})
	require.NoError(t, err)
	require.NotNil(t, appt.PatientName)
	assert.Equal(t, "Juan Dela Cruz", *appt.PatientName)
	assert.Nil(t, appt.PatientID, "numeric refs are not stored as account ids")
}

func TestCreateStoresUUIDPatientRef(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	appt, err := svc.Create(context.Background(), CreateInput{
		Date: wednesday, Time: "11:30:00", PatientRef: userID.String(), PatientName: "Ana Reyes",
	})
	require.NoError(t, err)
	require.NotNil(t, appt.PatientID)
	assert.Equal(t, userID, *appt.PatientID)
}

func TestUpdateReschedule(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:30:00"})
	require.NoError(t, err)

	// Moving onto an occupied slot conflicts.
	conflictTime := other.Time
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Time: &conflictTime})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Re-submitting the current slot does not conflict with itself.
	sameTime := appt.Time
	updated, err := svc.Update(ctx, appt.ID, UpdateInput{Time: &sameTime})
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", updated.Time)

	// A genuine move frees the old slot.
	newTime := "10:30:00"
	updated, err = svc.Update(ctx, appt.ID, UpdateInput{Time: &newTime})
	require.NoError(t, err)
	assert.Equal(t, newTime, updated.Time)

	booked, err := repo.BookedTimes(ctx, wednesday)
	require.NoError(t, err)
	assert.NotContains(t, booked, "09:00:00")
}

func TestUpdateRescheduleRevalidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00", Reason: "Therapy (youth)"})
	require.NoError(t, err)

	// Therapy cannot leave Wednesday.
	target := thursday
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Date: &target})
	requireValidationKind(t, err, KindServiceRestricted)

	weekend := saturday
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Date: &weekend})
	requireValidationKind(t, err, KindWeekendClosed)
}

func TestUpdateAttendanceSetsLastVisit(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00", PatientRef: "7"})
	require.NoError(t, err)

	attended := true
	pid := 7
	updated, err := svc.Update(ctx, appt.ID, UpdateInput{Attended: &attended, PatientNumericID: &pid})
	require.NoError(t, err)
	assert.Equal(t, StatusAttended, updated.Status)
	assert.Equal(t, wednesday, repo.lastVisits[7])

	// Misclick correction: a terminal row may flip to the other
	// terminal state.
	missed := true
	updated, err = svc.Update(ctx, appt.ID, UpdateInput{Missed: &missed})
	require.NoError(t, err)
	assert.Equal(t, StatusMissed, updated.Status)
}

func TestUpdateMissedFlag(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)

	missed := true
	updated, err := svc.Update(ctx, appt.ID, UpdateInput{Missed: &missed})
	require.NoError(t, err)
	assert.Equal(t, StatusMissed, updated.Status)
	assert.Empty(t, repo.lastVisits, "missed never touches last visit")
}

func TestUpdateTerminalStatusCannotRevert(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)

	attended := true
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Attended: &attended})
	require.NoError(t, err)

	back := string(StatusScheduled)
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Status: &back})
	requireValidationKind(t, err, KindInvalidTransition)

	bogus := "cancelled"
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Status: &bogus})
	requireValidationKind(t, err, KindInvalidTransition)
}

func TestUpdateUnknownAppointment(t *testing.T) {
	svc, _ := newTestService(t)

	reason := "Consultation"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Reason: &reason})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)

	count, err := svc.Delete(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.Delete(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// The slot is free again.
	_, err = svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)
}

func TestToggleDayClosureValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.ToggleDayClosure(ctx, "", true)
	requireValidationKind(t, err, KindMissingField)

	err = svc.ToggleDayClosure(ctx, "June 11", true)
	requireValidationKind(t, err, KindInvalidDate)

	// Idempotent in both directions.
	require.NoError(t, svc.ToggleDayClosure(ctx, wednesday, true))
	require.NoError(t, svc.ToggleDayClosure(ctx, wednesday, true))
	require.NoError(t, svc.ToggleDayClosure(ctx, wednesday, false))
	require.NoError(t, svc.ToggleDayClosure(ctx, wednesday, false))
}

func TestClosureKeepsExistingAppointments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)
	require.NoError(t, svc.ToggleDayClosure(ctx, wednesday, true))

	got, err := svc.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, got.Status)

	slots, err := svc.AvailableSlots(ctx, wednesday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	slots, err := svc.AvailableSlots(ctx, wednesday)
	require.NoError(t, err)
	require.Len(t, slots, 18)

	_, err = svc.Create(ctx, CreateInput{Date: wednesday, Time: "08:00:00"})
	require.NoError(t, err)

	slots, err = svc.AvailableSlots(ctx, wednesday)
	require.NoError(t, err)
	assert.Len(t, slots, 17)
	assert.NotContains(t, slots, "08:00:00")
}

func TestAvailableSlotsEmptyCases(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{saturday, sunday, monday} {
		slots, err := svc.AvailableSlots(ctx, date)
		require.NoError(t, err)
		assert.NotNil(t, slots)
		assert.Empty(t, slots, date)
	}

	_, err := svc.AvailableSlots(ctx, "")
	requireValidationKind(t, err, KindMissingField)
	_, err = svc.AvailableSlots(ctx, "11-06-2025")
	requireValidationKind(t, err, KindInvalidDate)
}

func TestAvailableSlotsTodayCutoff(t *testing.T) {
	svc, _ := newTestService(t)

	// Clock is fixed at 14:05; 14:00:00 has started, 14:30:00 has not.
	slots, err := svc.AvailableSlots(context.Background(), tuesday)
	require.NoError(t, err)
	assert.Equal(t, []string{"14:30:00", "15:00:00", "15:30:00", "16:00:00", "16:30:00"}, slots)
}

func TestDayMap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:00:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Date: wednesday, Time: "09:30:00"})
	require.NoError(t, err)
	require.NoError(t, svc.ToggleDayClosure(ctx, thursday, true))

	days, err := svc.DayMap(ctx, wednesday, sunday)
	require.NoError(t, err)
	require.Len(t, days, 5)

	wed := days[0]
	assert.Equal(t, wednesday, wed.Date)
	assert.Equal(t, 2, wed.BookedCount)
	assert.Equal(t, 18, wed.Capacity)
	assert.False(t, wed.IsFull)
	assert.False(t, wed.IsClosed)

	thu := days[1]
	assert.True(t, thu.IsClosed)

	sat := days[3]
	assert.True(t, sat.IsWeekend)
}

func TestDayMapValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DayMap(context.Background(), "", sunday)
	requireValidationKind(t, err, KindMissingField)
	_, err = svc.DayMap(context.Background(), wednesday, "soon")
	requireValidationKind(t, err, KindInvalidDate)
}

func TestParsePatientRef(t *testing.T) {
	u := uuid.New()
	gotU, gotN := parsePatientRef(u.String())
	require.NotNil(t, gotU)
	assert.Equal(t, u, *gotU)
	assert.Nil(t, gotN)

	gotU, gotN = parsePatientRef("17")
	assert.Nil(t, gotU)
	require.NotNil(t, gotN)
	assert.Equal(t, 17, *gotN)

	for _, bad := range []string{"", "-4", "3.5", "1 2", "walk-in"} {
		gotU, gotN = parsePatientRef(bad)
		assert.Nil(t, gotU, bad)
		assert.Nil(t, gotN, bad)
	}
}
