package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-09 is a Monday.
const (
	monday    = "2025-06-09"
	tuesday   = "2025-06-10"
	wednesday = "2025-06-11"
	thursday  = "2025-06-12"
	saturday  = "2025-06-14"
	sunday    = "2025-06-15"
)

func TestSlotsForDayDefaultGrid(t *testing.T) {
	slots := SlotsForDay(DefaultOpenHour, DefaultCloseHour)

	require.Len(t, slots, SlotsPerDay)
	assert.Equal(t, 18, len(slots))
	assert.Equal(t, "08:00:00", slots[0])
	assert.Equal(t, "08:30:00", slots[1])
	assert.Equal(t, "16:30:00", slots[len(slots)-1])
}

func TestSlotsForDayCustomHours(t *testing.T) {
	slots := SlotsForDay(9, 12)
	assert.Equal(t, []string{"09:00:00", "09:30:00", "10:00:00", "10:30:00", "11:00:00", "11:30:00"}, slots)

	assert.Empty(t, SlotsForDay(12, 12))
	assert.Empty(t, SlotsForDay(14, 12))
}

func TestIsWeekend(t *testing.T) {
	assert.False(t, IsWeekend(monday))
	assert.False(t, IsWeekend("2025-06-13")) // Friday
	assert.True(t, IsWeekend(saturday))
	assert.True(t, IsWeekend(sunday))
	assert.False(t, IsWeekend("not-a-date"))
}

func TestIsPast(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 5, 0, 0, time.UTC)

	assert.True(t, IsPast(monday, now))
	assert.False(t, IsPast(tuesday, now), "today is not past")
	assert.False(t, IsPast(wednesday, now))
}

func TestRestrictedServiceMatching(t *testing.T) {
	assert.True(t, IsRestrictedService("Therapy (youth)"))
	assert.True(t, IsRestrictedService("follow-up THERAPY session"))
	assert.False(t, IsRestrictedService("Consultation"))
	assert.False(t, IsRestrictedService(""))
}

func TestServiceAllowedOnDate(t *testing.T) {
	assert.True(t, IsServiceAllowedOnDate("Therapy (youth)", wednesday))
	assert.False(t, IsServiceAllowedOnDate("Therapy (youth)", thursday))
	assert.False(t, IsServiceAllowedOnDate("Therapy (youth)", saturday))

	// Unrestricted services run any weekday.
	assert.True(t, IsServiceAllowedOnDate("Consultation", thursday))
	assert.True(t, IsServiceAllowedOnDate("", monday))
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 18, Capacity(DefaultOpenHour, DefaultCloseHour))
	assert.Equal(t, 4, Capacity(9, 11))
	assert.Equal(t, 0, Capacity(11, 11))
	assert.Equal(t, 0, Capacity(14, 9))
}
