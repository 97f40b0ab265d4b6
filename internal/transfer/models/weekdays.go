package models

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	dErrors "medtransit/pkg/domain-errors"
)

// Weekdays is a sorted, duplicate-free set of ISO weekdays (1=Monday..7=Sunday).
// Values from ParseWeekdays or NewWeekdays are always valid and non-empty.
type Weekdays []int

// NewWeekdays validates and normalises days.
func NewWeekdays(days []int) (Weekdays, error) {
	if len(days) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one weekday is required")
	}
	out := make(Weekdays, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 7 {
			return nil, dErrors.New(dErrors.CodeValidation, "weekday "+strconv.Itoa(d)+" out of range 1..7")
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out, nil
}

// ParseWeekdays parses the comma-separated form, e.g. "1,3,5". Empty tokens
// such as "1,,3" or a trailing comma are rejected; repeats are folded by
// NewWeekdays.
func ParseWeekdays(s string) (Weekdays, error) {
	if strings.TrimSpace(s) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one weekday is required")
	}
	tokens := strings.Split(s, ",")
	days := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "malformed weekdays "+strconv.Quote(s))
		}
		d, err := strconv.Atoi(tok)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid weekday "+strconv.Quote(tok))
		}
		days = append(days, d)
	}
	return NewWeekdays(days)
}

func (w Weekdays) Contains(day int) bool {
	return slices.Contains(w, day)
}

// FirstCommon returns the smallest weekday present in both sets.
func (w Weekdays) FirstCommon(other Weekdays) (int, bool) {
	for _, d := range w {
		if other.Contains(d) {
			return d, true
		}
	}
	return 0, false
}

func (w Weekdays) Ints() []int {
	return append([]int(nil), w...)
}

func (w Weekdays) String() string {
	parts := make([]string, len(w))
	for i, d := range w {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON renders the comma-separated form clients already use.
func (w Weekdays) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON accepts "1,3,5" or [1,3,5].
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseWeekdays(s)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	}
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return dErrors.New(dErrors.CodeValidation, "weekdays must be a string like \"1,3,5\" or an integer array")
	}
	parsed, err := NewWeekdays(days)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

var weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayName returns the short English label for an ISO weekday.
func WeekdayName(day int) string {
	if day < 1 || day > 7 {
		return ""
	}
	return weekdayNames[day]
}
