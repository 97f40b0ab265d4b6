package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "medtransit/pkg/domain-errors"
)

// Schedule is a recurring transfer definition: one patient, one driver agenda,
// a time of day and a set of weekdays inside a date window.
type Schedule struct {
	ID          uuid.UUID
	AgendaID    uuid.UUID
	PatientID   uuid.UUID
	Origin      string
	Destination string
	Time        ClockTime
	Weekdays    Weekdays
	StartDate   time.Time
	EndDate     *time.Time // nil means indefinite
	Active      bool
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduleFields carries the client-editable attributes of a Schedule.
type ScheduleFields struct {
	AgendaID    uuid.UUID
	PatientID   uuid.UUID
	Origin      string
	Destination string
	Time        ClockTime
	Weekdays    Weekdays
	StartDate   time.Time
	EndDate     *time.Time
	Active      bool
	Notes       string
}

// NewSchedule builds a Schedule and checks its invariants.
func NewSchedule(id uuid.UUID, f ScheduleFields, now time.Time) (*Schedule, error) {
	s := &Schedule{ID: id, CreatedAt: now}
	if err := s.Apply(f, now); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply replaces the editable fields, rejecting values that break an invariant.
// The receiver is left untouched on error.
func (s *Schedule) Apply(f ScheduleFields, now time.Time) error {
	if err := f.check(); err != nil {
		return err
	}
	s.AgendaID = f.AgendaID
	s.PatientID = f.PatientID
	s.Origin = strings.TrimSpace(f.Origin)
	s.Destination = strings.TrimSpace(f.Destination)
	s.Time = f.Time
	s.Weekdays = f.Weekdays
	s.StartDate = f.StartDate
	s.EndDate = f.EndDate
	s.Active = f.Active
	s.Notes = strings.TrimSpace(f.Notes)
	s.UpdatedAt = now
	return nil
}

func (f ScheduleFields) check() error {
	switch {
	case f.AgendaID == uuid.Nil:
		return dErrors.New(dErrors.CodeInvariantViolation, "agenda is required")
	case f.PatientID == uuid.Nil:
		return dErrors.New(dErrors.CodeInvariantViolation, "patient is required")
	case strings.TrimSpace(f.Origin) == "":
		return dErrors.New(dErrors.CodeInvariantViolation, "origin address is required")
	case strings.TrimSpace(f.Destination) == "":
		return dErrors.New(dErrors.CodeInvariantViolation, "destination address is required")
	case f.Time < 0 || f.Time >= 24*60:
		return dErrors.New(dErrors.CodeInvariantViolation, "time of day out of range")
	case f.StartDate.IsZero():
		return dErrors.New(dErrors.CodeInvariantViolation, "start date is required")
	case f.EndDate != nil && f.EndDate.Before(f.StartDate):
		return dErrors.New(dErrors.CodeInvariantViolation, "end date must not be before start date")
	}
	if _, err := NewWeekdays(f.Weekdays); err != nil {
		de, _ := dErrors.As(err)
		return dErrors.New(dErrors.CodeInvariantViolation, de.Message)
	}
	return nil
}

// Deactivate soft-deletes the schedule.
func (s *Schedule) Deactivate(now time.Time) {
	s.Active = false
	s.UpdatedAt = now
}

// OverlapsDates reports whether the two date windows share at least one day.
// Open ends extend forever in their direction.
func (s *Schedule) OverlapsDates(o *Schedule) bool {
	if s.EndDate != nil && s.EndDate.Before(o.StartDate) {
		return false
	}
	if o.EndDate != nil && o.EndDate.Before(s.StartDate) {
		return false
	}
	return true
}
