// Package schedule implements the pure scheduling engine: deciding
// which doses and visits are due on a calendar date, merging them with
// logged dispositions, and grouping the result for presentation. The
// package performs no I/O; callers inject data and, where relevant, the
// current time.
package schedule

import (
	"time"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
)

// IsDue decides whether a dose is due on day according to the
// schedule's frequency rule. The treatment-window check is the
// caller's responsibility; this predicate only evaluates recurrence.
// All arithmetic is on calendar dates (year/month/day), never instants,
// so the answer is identical in every time zone.
func IsDue(s *medication.Schedule, medicationStart *time.Time, day time.Time) bool {
	switch s.Frequency {
	case medication.FrequencyDaily:
		return true

	case medication.FrequencyWeekly:
		return s.HasWeekday(day.Weekday())

	case medication.FrequencyAlternateDays:
		// Without a recorded start date there is no parity anchor, so the
		// rule degrades to daily. Deliberately permissive rather than an
		// error: it is safer to show a dose than to hide one.
		if medicationStart == nil {
			return true
		}
		return daysBetween(*medicationStart, day)%2 == 0

	default:
		return false
	}
}

// daysBetween returns the number of whole days from the calendar date
// of a to the calendar date of b. Negative when b precedes a.
func daysBetween(a, b time.Time) int {
	da := medication.DateOf(a)
	db := medication.DateOf(b)
	return int(db.Sub(da).Hours() / 24)
}

// eachDay calls fn for every calendar date in [from, to] inclusive.
func eachDay(from, to time.Time, fn func(day time.Time)) {
	for d := medication.DateOf(from); !d.After(medication.DateOf(to)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}
