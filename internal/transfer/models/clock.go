package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dErrors "medtransit/pkg/domain-errors"
)

// ClockTime is a time of day with minute precision, stored as minutes after midnight.
type ClockTime int

// ParseClockTime accepts "HH:MM" or "HH:MM:SS". Seconds are discarded.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, dErrors.New(dErrors.CodeValidation, "invalid time "+s+": expected HH:MM")
}

// MustClockTime is ParseClockTime for literals.
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant this time of day falls on the given calendar date in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return dErrors.New(dErrors.CodeValidation, "time must be a HH:MM string")
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value stores the time as "HH:MM" for a Postgres TIME column.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan reads "HH:MM[:SS]" text or a time.Time from the driver.
func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		return c.Scan(string(v))
	case time.Time:
		*c = ClockTime(v.Hour()*60 + v.Minute())
	default:
		return fmt.Errorf("scan clock time: unsupported type %T", src)
	}
	return nil
}
