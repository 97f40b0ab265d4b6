package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
)

// fakeFinder filters an in-memory slice the way the stores do.
type fakeFinder struct {
	schedules []*models.Schedule
	err       error
}

func (f *fakeFinder) ListActiveByAgenda(_ context.Context, agendaID uuid.UUID) ([]*models.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Schedule
	for _, s := range f.schedules {
		if s.Active && s.AgendaID == agendaID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeFinder) ListActiveByPatient(_ context.Context, patientID uuid.UUID) ([]*models.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Schedule
	for _, s := range f.schedules {
		if s.Active && s.PatientID == patientID {
			out = append(out, s)
		}
	}
	return out, nil
}

type DetectorSuite struct {
	suite.Suite
	ctx     context.Context
	finder  *fakeFinder
	det     *Detector
	agenda  uuid.UUID
	patient uuid.UUID
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorSuite))
}

func (s *DetectorSuite) SetupTest() {
	s.ctx = context.Background()
	s.finder = &fakeFinder{}
	s.det = New(s.finder)
	s.agenda = uuid.New()
	s.patient = uuid.New()
}

func (s *DetectorSuite) day(v string) time.Time {
	d, err := models.ParseDate(v)
	s.Require().NoError(err)
	return d
}

func (s *DetectorSuite) newSchedule(agenda, patient uuid.UUID, at string, days models.Weekdays, start, end string) *models.Schedule {
	sch := &models.Schedule{
		ID:        uuid.New(),
		AgendaID:  agenda,
		PatientID: patient,
		Time:      models.MustClockTime(at),
		Weekdays:  days,
		StartDate: s.day(start),
		Active:    true,
	}
	if end != "" {
		e := s.day(end)
		sch.EndDate = &e
	}
	return sch
}

func (s *DetectorSuite) requireConflict(err error) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "expected conflict, got %v", err)
}

func (s *DetectorSuite) TestAgendaCheck() {
	s.Run("same time, shared weekday, overlapping range conflicts", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1, 3}, "2024-01-01", ""),
		}
		candidate := s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{3, 5}, "2024-06-01", "")
		s.requireConflict(s.det.Check(s.ctx, candidate, uuid.Nil))
	})

	s.Run("a later weekday in the set is also checked", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{5}, "2024-01-01", ""),
		}
		candidate := s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1, 2, 5}, "2024-01-01", "")
		err := s.det.Check(s.ctx, candidate, uuid.Nil)
		s.requireConflict(err)
		s.Contains(err.Error(), "Fri")
	})

	s.Run("different time does not conflict", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1}, "2024-01-01", ""),
		}
		candidate := s.newSchedule(s.agenda, uuid.New(), "08:30", models.Weekdays{1}, "2024-01-01", "")
		s.NoError(s.det.Check(s.ctx, candidate, uuid.Nil))
	})

	s.Run("disjoint weekdays do not conflict", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1, 3}, "2024-01-01", ""),
		}
		candidate := s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{2, 4}, "2024-01-01", "")
		s.NoError(s.det.Check(s.ctx, candidate, uuid.Nil))
	})

	s.Run("disjoint date ranges do not conflict", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1}, "2024-01-01", "2024-01-31"),
		}
		candidate := s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1}, "2024-02-01", "")
		s.NoError(s.det.Check(s.ctx, candidate, uuid.Nil))
	})

	s.Run("open-ended existing schedule overlaps a later window", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1}, "2024-01-01", ""),
		}
		candidate := s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1}, "2030-01-01", "2030-12-31")
		s.requireConflict(s.det.Check(s.ctx, candidate, uuid.Nil))
	})

	s.Run("another agenda is not compared", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(uuid.New(), uuid.New(), "08:00", models.Weekdays{1}, "2024-01-01", ""),
		}
		candidate := s.newSchedule(s.agenda, uuid.New(), "08:00", models.Weekdays{1}, "2024-01-01", "")
		s.NoError(s.det.Check(s.ctx, candidate, uuid.Nil))
	})
}

func (s *DetectorSuite) TestPatientCheck() {
	s.Run("shared monday conflicts even when date ranges are disjoint", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(uuid.New(), s.patient, "10:00", models.Weekdays{1}, "2024-01-01", "2024-01-31"),
		}
		candidate := s.newSchedule(uuid.New(), s.patient, "10:00", models.Weekdays{1, 2}, "2024-03-01", "2024-03-31")
		err := s.det.Check(s.ctx, candidate, uuid.Nil)
		s.requireConflict(err)
		s.Contains(err.Error(), "patient")
	})

	s.Run("different hour for the same patient is fine", func() {
		s.finder.schedules = []*models.Schedule{
			s.newSchedule(uuid.New(), s.patient, "10:00", models.Weekdays{1}, "2024-01-01", ""),
		}
		candidate := s.newSchedule(uuid.New(), s.patient, "14:00", models.Weekdays{1}, "2024-01-01", "")
		s.NoError(s.det.Check(s.ctx, candidate, uuid.Nil))
	})
}

func (s *DetectorSuite) TestSymmetry() {
	a := s.newSchedule(s.agenda, uuid.New(), "09:15", models.Weekdays{2, 4}, "2024-01-01", "2024-06-30")
	b := s.newSchedule(s.agenda, uuid.New(), "09:15", models.Weekdays{4, 6}, "2024-05-01", "")

	s.finder.schedules = []*models.Schedule{a}
	s.requireConflict(s.det.Check(s.ctx, b, uuid.Nil))

	s.finder.schedules = []*models.Schedule{b}
	s.requireConflict(s.det.Check(s.ctx, a, uuid.Nil))
}

func (s *DetectorSuite) TestExclusions() {
	existing := s.newSchedule(s.agenda, s.patient, "08:00", models.Weekdays{1}, "2024-01-01", "")
	s.finder.schedules = []*models.Schedule{existing}

	s.Run("updating a schedule does not conflict with itself", func() {
		updated := *existing
		updated.Weekdays = models.Weekdays{1, 2}
		s.NoError(s.det.Check(s.ctx, &updated, existing.ID))
	})

	s.Run("inactive candidate is not checked", func() {
		candidate := s.newSchedule(s.agenda, s.patient, "08:00", models.Weekdays{1}, "2024-01-01", "")
		candidate.Active = false
		s.NoError(s.det.Check(s.ctx, candidate, uuid.Nil))
	})

	s.Run("inactive existing schedules are ignored", func() {
		existing.Active = false
		defer func() { existing.Active = true }()
		candidate := s.newSchedule(s.agenda, s.patient, "08:00", models.Weekdays{1}, "2024-01-01", "")
		s.NoError(s.det.Check(s.ctx, candidate, uuid.Nil))
	})
}

func (s *DetectorSuite) TestValidationAndFailures() {
	s.Run("malformed weekday set fails validation before any lookup", func() {
		s.finder.err = errors.New("must not be called")
		defer func() { s.finder.err = nil }()
		candidate := s.newSchedule(s.agenda, s.patient, "08:00", models.Weekdays{0, 9}, "2024-01-01", "")
		err := s.det.Check(s.ctx, candidate, uuid.Nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
	})

	s.Run("store failure is internal", func() {
		s.finder.err = errors.New("connection refused")
		defer func() { s.finder.err = nil }()
		candidate := s.newSchedule(s.agenda, s.patient, "08:00", models.Weekdays{1}, "2024-01-01", "")
		err := s.det.Check(s.ctx, candidate, uuid.Nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
