package models

import (
	"strings"
	"time"

	dErrors "medtransit/pkg/domain-errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf returns the calendar day t falls on in loc, as midnight UTC.
// All service dates in the system use this normal form so they compare with ==.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "invalid date "+s+": expected YYYY-MM-DD")
	}
	return d, nil
}

// FormatDate renders a calendar date.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(d time.Time) int {
	return (int(d.Weekday())+6)%7 + 1
}

// WeekStart returns the Monday of the week containing d.
func WeekStart(d time.Time) time.Time {
	return d.AddDate(0, 0, 1-ISOWeekday(d))
}
