package booking

import (
	"fmt"
	"time"

	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// NewInterval builds the interval covered by a booking starting at start
// and lasting hours.  The end may pass midnight; it is not wrapped.
func NewInterval(start string, hours int) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: s + hours*60}, nil
}

// Overlaps reports whether two half-open intervals share any minute.
// Touching intervals (one ends exactly where the other starts) do not.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".  Values of 24:00
// and beyond are kept as-is rather than wrapped to the next day.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Available reports whether iv is free on (date, lane) given the existing
// reservations.  The reservation with id excludeID is ignored; pass 0 to
// consider every reservation.
func Available(existing []model.Reservation, date, lane string, iv Interval, excludeID uint64) bool {
	for _, r := range existing {
		if r.Date != date || r.Lane != lane {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		other, err := NewInterval(r.StartTime, r.DurationHours)
		if err != nil {
			continue
		}
		if iv.Overlaps(other) {
			return false
		}
	}
	return true
}
