package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Clinic-wide scheduling grid. These must match the admin frontend.
const (
	SlotMinutes      = 30
	DefaultOpenHour  = 8  // 08:00
	DefaultCloseHour = 17 // last start 16:30
	SlotsPerDay      = (DefaultCloseHour - DefaultOpenHour) * 60 / SlotMinutes
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// restrictedServiceWeekday is the only ISO weekday youth therapy runs on.
const restrictedServiceWeekday = 3 // Wednesday

// ParseDate strictly parses a calendar date in YYYY-MM-DD form.
func ParseDate(ds string) (time.Time, error) {
	t, err := time.Parse(DateLayout, ds)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", ds, err)
	}
	return t, nil
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
// Invalid dates are treated as non-weekend; callers validate the date
// separately.
func IsWeekend(ds string) bool {
	t, err := ParseDate(ds)
	if err != nil {
		return false
	}
	return isoWeekday(t) >= 6
}

// IsPast reports whether the date is strictly before today in the
// clinic-local calendar. Time of day is ignored.
func IsPast(ds string, now time.Time) bool {
	return ds < now.Format(DateLayout)
}

// SlotsForDay enumerates every slot start time in [openHour:00,
// closeHour:00), ascending, on the 30-minute grid.
func SlotsForDay(openHour, closeHour int) []string {
	var out []string
	for h := openHour; h < closeHour; h++ {
		out = append(out, fmt.Sprintf("%02d:00:00", h))
		out = append(out, fmt.Sprintf("%02d:30:00", h))
	}
	return out
}

// IsRestrictedService reports whether the reason names the
// day-restricted youth therapy service.
func IsRestrictedService(reason string) bool {
	return strings.Contains(strings.ToLower(reason), "therapy")
}

// IsServiceAllowedOnDate enforces per-service day restrictions: youth
// therapy only runs on Wednesdays, every other service runs any day.
func IsServiceAllowedOnDate(reason, ds string) bool {
	if !IsRestrictedService(reason) {
		return true
	}
	t, err := ParseDate(ds)
	if err != nil {
		return false
	}
	return isoWeekday(t) == restrictedServiceWeekday
}

// Capacity is the slot count for a day with the given effective hours.
func Capacity(openHour, closeHour int) int {
	if closeHour <= openHour {
		return 0
	}
	return (closeHour - openHour) * 60 / SlotMinutes
}
