// Package recurrence decides which calendar dates a Schedule applies to.
//
// All functions are pure. Dates are expected in the normal form produced by
// models.DateOf (midnight UTC of the local calendar day).
package recurrence

import (
	"time"

	"medtransit/internal/transfer/models"
)

// Applies reports whether s produces a transfer on date.
func Applies(s *models.Schedule, date time.Time) bool {
	if s == nil || !s.Active {
		return false
	}
	if date.Before(s.StartDate) {
		return false
	}
	if s.EndDate != nil && date.After(*s.EndDate) {
		return false
	}
	return s.Weekdays.Contains(models.ISOWeekday(date))
}

// ApplicableOn filters schedules down to those that apply on date, keeping order.
func ApplicableOn(schedules []*models.Schedule, date time.Time) []*models.Schedule {
	out := make([]*models.Schedule, 0, len(schedules))
	for _, s := range schedules {
		if Applies(s, date) {
			out = append(out, s)
		}
	}
	return out
}

// Occurrences lists the dates in [from, to] on which s applies.
func Occurrences(s *models.Schedule, from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if Applies(s, d) {
			out = append(out, d)
		}
	}
	return out
}
