package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"medtransit/internal/directory"
	"medtransit/internal/transfer/models"
	"medtransit/internal/transfer/store"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/requestcontext"
)

type StatisticsSuite struct {
	suite.Suite
	store     *store.InMemory
	directory *directory.InMemory
	service   *Service
	ctx       context.Context

	agenda     *directory.Agenda
	wheelchair *directory.Patient
	walking    *directory.Patient
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsSuite))
}

func (s *StatisticsSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.directory = directory.NewInMemory()
	s.service = New(s.store, s.directory, time.UTC)
	// Wednesday 15 May 2024
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC))

	s.agenda = &directory.Agenda{ID: uuid.New(), DriverName: "Marta Díaz", Active: true}
	s.wheelchair = &directory.Patient{ID: uuid.New(), Name: "Juan Pérez", RequiresWheelchair: true, Active: true}
	s.walking = &directory.Patient{ID: uuid.New(), Name: "Ana Gómez", Active: true}
	s.directory.PutAgenda(s.agenda)
	s.directory.PutPatient(s.wheelchair)
	s.directory.PutPatient(s.walking)
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (s *StatisticsSuite) schedule(patient *directory.Patient, at string, active bool) *models.Schedule {
	sch, err := models.NewSchedule(uuid.New(), models.ScheduleFields{
		AgendaID:    s.agenda.ID,
		PatientID:   patient.ID,
		Origin:      "Av. Colón 1200",
		Destination: "Hospital Privado",
		Time:        models.MustClockTime(at),
		Weekdays:    models.Weekdays{1, 2, 3, 4, 5, 6, 7},
		StartDate:   day("2024-01-01"),
		Active:      active,
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSchedule(s.ctx, sch))
	return sch
}

// record writes PENDING for (sch, date) followed by the given states.
func (s *StatisticsSuite) record(sch *models.Schedule, date string, states ...models.State) {
	rec := models.NewPendingRecord(sch.ID, day(date), time.Now())
	created, err := s.store.InsertFirstRecord(s.ctx, rec)
	s.Require().NoError(err)
	s.Require().True(created)
	for _, st := range states {
		reason := ""
		if st == models.StateCanceled {
			reason = "patient hospitalised"
		}
		next, err := rec.Next(st, "dispatcher", reason, time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.store.AppendRecord(s.ctx, next))
		rec = next
	}
}

func (s *StatisticsSuite) TestParsePeriod() {
	cases := map[string]Period{
		"":       PeriodToday,
		"hoy":    PeriodToday,
		"semana": PeriodWeek,
		"MES":    PeriodMonth,
		"anio":   PeriodYear,
		"año":    PeriodYear,
		"year":   PeriodYear,
	}
	for raw, want := range cases {
		got, err := ParsePeriod(raw)
		s.Require().NoError(err, raw)
		s.Equal(want, got, raw)
	}

	_, err := ParsePeriod("quarter")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *StatisticsSuite) TestPeriodRange() {
	today := day("2024-02-14")
	from, to := PeriodWeek.Range(today)
	s.Equal("2024-02-12", models.FormatDate(from))
	s.Equal("2024-02-18", models.FormatDate(to))

	from, to = PeriodMonth.Range(today)
	s.Equal("2024-02-01", models.FormatDate(from))
	s.Equal("2024-02-29", models.FormatDate(to))

	from, to = PeriodYear.Range(today)
	s.Equal("2024-01-01", models.FormatDate(from))
	s.Equal("2024-12-31", models.FormatDate(to))

	from, to = PeriodToday.Range(today)
	s.Equal(today, from)
	s.Equal(today, to)
}

func (s *StatisticsSuite) TestWeekBreakdown() {
	a := s.schedule(s.wheelchair, "08:00", true)
	b := s.schedule(s.walking, "10:00", true)
	s.record(a, "2024-05-13", models.StateStarted, models.StateFinished) // Monday
	s.record(a, "2024-05-15", models.StateCanceled)
	s.record(b, "2024-05-15", models.StateStarted, models.StateFinished)
	s.record(b, "2024-05-16")                                            // pending is not counted
	s.record(a, "2024-05-10", models.StateStarted, models.StateFinished) // previous week

	stats, err := s.service.AgendaStatistics(s.ctx, s.agenda.ID, PeriodWeek)
	s.Require().NoError(err)

	s.Equal("2024-05-13", stats.From)
	s.Equal("2024-05-19", stats.To)
	s.Equal(Bucket{Total: 3, Finished: 2, Canceled: 1, Wheelchair: 1, WithoutChair: 1}, stats.Totals)
	s.InDelta(66.67, stats.SuccessRate, 0.01)
	s.InDelta(33.33, stats.CancellationRate, 0.01)

	s.Require().Len(stats.Breakdown, 7)
	labels := make([]string, 0, 7)
	for _, b := range stats.Breakdown {
		labels = append(labels, b.Label)
	}
	s.Equal([]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, labels)
	s.Equal(1, stats.Breakdown[0].Finished)
	s.Equal(2, stats.Breakdown[2].Total)
	s.Equal(1, stats.Breakdown[2].Canceled)
	s.Equal(0, stats.Breakdown[3].Total)
}

func (s *StatisticsSuite) TestMonthBreakdown() {
	a := s.schedule(s.walking, "08:00", true)
	s.record(a, "2024-05-01", models.StateStarted, models.StateFinished)
	s.record(a, "2024-05-15", models.StateCanceled)
	s.record(a, "2024-05-31", models.StateStarted, models.StateFinished)

	stats, err := s.service.AgendaStatistics(s.ctx, s.agenda.ID, PeriodMonth)
	s.Require().NoError(err)

	s.Require().Len(stats.Breakdown, 5)
	s.Equal("Week 1", stats.Breakdown[0].Label)
	s.Equal("Week 5", stats.Breakdown[4].Label)
	s.Equal(1, stats.Breakdown[0].Finished)
	s.Equal(1, stats.Breakdown[2].Canceled)
	s.Equal(1, stats.Breakdown[4].Finished)
	s.Equal(3, stats.Totals.Total)
}

func (s *StatisticsSuite) TestYearAndToday() {
	a := s.schedule(s.walking, "08:00", true)
	s.record(a, "2024-01-08", models.StateStarted, models.StateFinished)
	s.record(a, "2024-05-15", models.StateStarted, models.StateFinished)

	s.Run("year has one bucket per month", func() {
		stats, err := s.service.AgendaStatistics(s.ctx, s.agenda.ID, PeriodYear)
		s.Require().NoError(err)
		s.Require().Len(stats.Breakdown, 12)
		s.Equal("Jan", stats.Breakdown[0].Label)
		s.Equal("Dec", stats.Breakdown[11].Label)
		s.Equal(1, stats.Breakdown[0].Finished)
		s.Equal(1, stats.Breakdown[4].Finished)
		s.Equal(2, stats.Totals.Finished)
	})

	s.Run("today is a single bucket", func() {
		stats, err := s.service.AgendaStatistics(s.ctx, s.agenda.ID, PeriodToday)
		s.Require().NoError(err)
		s.Require().Len(stats.Breakdown, 1)
		s.Equal("Today", stats.Breakdown[0].Label)
		s.Equal(1, stats.Totals.Finished)
		s.InDelta(100.0, stats.SuccessRate, 0.001)
	})
}

func (s *StatisticsSuite) TestInactiveSchedulesAreCounted() {
	a := s.schedule(s.walking, "08:00", false)
	s.record(a, "2024-05-14", models.StateStarted, models.StateFinished)

	stats, err := s.service.AgendaStatistics(s.ctx, s.agenda.ID, PeriodWeek)
	s.Require().NoError(err)
	s.Equal(1, stats.Totals.Finished)
}

func (s *StatisticsSuite) TestEmptyAgenda() {
	stats, err := s.service.AgendaStatistics(s.ctx, s.agenda.ID, PeriodWeek)
	s.Require().NoError(err)
	s.Zero(stats.Totals.Total)
	s.Zero(stats.SuccessRate)
	s.Zero(stats.CancellationRate)
	s.Len(stats.Breakdown, 7)
}

func (s *StatisticsSuite) TestUnknownAgenda() {
	_, err := s.service.AgendaStatistics(s.ctx, uuid.New(), PeriodWeek)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StatisticsSuite) TestSummary() {
	a := s.schedule(s.wheelchair, "08:00", true)
	b := s.schedule(s.walking, "10:00", true)
	s.record(a, "2024-04-20", models.StateStarted, models.StateFinished)
	s.record(a, "2024-05-14", models.StateCanceled)
	s.record(b, "2024-05-14", models.StateStarted)
	s.record(b, "2024-05-15")
	s.record(b, "2024-03-01", models.StateStarted, models.StateFinished) // before the default window

	s.Run("defaults to the last month", func() {
		sum, err := s.service.Summary(s.ctx, time.Time{}, time.Time{})
		s.Require().NoError(err)
		s.Equal("2024-04-15", sum.From)
		s.Equal("2024-05-15", sum.To)
		s.Equal(Summary{From: "2024-04-15", To: "2024-05-15", Total: 4, Pending: 1, Started: 1, Finished: 1, Canceled: 1}, *sum)
	})

	s.Run("explicit range", func() {
		sum, err := s.service.Summary(s.ctx, day("2024-05-14"), day("2024-05-14"))
		s.Require().NoError(err)
		s.Equal(2, sum.Total)
		s.Equal(1, sum.Started)
		s.Equal(1, sum.Canceled)
	})

	s.Run("end before start", func() {
		_, err := s.service.Summary(s.ctx, day("2024-05-14"), day("2024-05-01"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
