// Package statistics aggregates closed transfers per driver agenda and
// summarises record states over date ranges. It only reads.
package statistics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"medtransit/internal/directory"
	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/sentinel"
	"medtransit/pkg/requestcontext"
)

var tracer = otel.Tracer("medtransit/internal/statistics")

// defaultSummaryMonths is how far back Summary looks when no start is given.
const defaultSummaryMonths = 1

type Store interface {
	ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error)
	LatestRecordsInRange(ctx context.Context, from, to time.Time, scheduleIDs []uuid.UUID) ([]*models.StatusRecord, error)
}

type Directory interface {
	FindAgenda(ctx context.Context, id uuid.UUID) (*directory.Agenda, error)
	FindPatients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*directory.Patient, error)
}

type Service struct {
	store     Store
	directory Directory
	location  *time.Location
}

func New(store Store, dir Directory, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, directory: dir, location: loc}
}

// AgendaStatistics counts the finished and canceled transfers of one agenda in
// the period containing today, broken down by day, week or month.
func (s *Service) AgendaStatistics(ctx context.Context, agendaID uuid.UUID, period Period) (*AgendaStatistics, error) {
	ctx, span := tracer.Start(ctx, "statistics.AgendaStatistics")
	span.SetAttributes(attribute.String("agenda_id", agendaID.String()), attribute.String("period", string(period)))
	defer span.End()

	if _, err := s.directory.FindAgenda(ctx, agendaID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "agenda not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agenda")
	}

	today := models.DateOf(requestcontext.Now(ctx), s.location)
	from, to := period.Range(today)
	breakdown, slot := buckets(period, from, to)
	stats := &AgendaStatistics{
		AgendaID:  agendaID,
		Period:    period,
		From:      models.FormatDate(from),
		To:        models.FormatDate(to),
		Breakdown: breakdown,
	}

	// inactive schedules keep their history, so they are counted too
	schedules, err := s.store.ListSchedules(ctx, models.ScheduleFilter{AgendaID: &agendaID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	if len(schedules) == 0 {
		return stats, nil
	}
	byID := make(map[uuid.UUID]*models.Schedule, len(schedules))
	ids := make([]uuid.UUID, 0, len(schedules))
	patientIDs := make([]uuid.UUID, 0, len(schedules))
	for _, sch := range schedules {
		byID[sch.ID] = sch
		ids = append(ids, sch.ID)
		patientIDs = append(patientIDs, sch.PatientID)
	}

	records, err := s.store.LatestRecordsInRange(ctx, from, to, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status records")
	}
	patients, err := s.directory.FindPatients(ctx, patientIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load patients")
	}

	for _, rec := range records {
		sch, ok := byID[rec.ScheduleID]
		if !ok {
			continue
		}
		wheelchair := false
		if p, ok := patients[sch.PatientID]; ok {
			wheelchair = p.RequiresWheelchair
		}
		stats.Totals.add(rec.State, wheelchair)
		if i := slot(rec.ServiceDate); i >= 0 && i < len(stats.Breakdown) {
			stats.Breakdown[i].add(rec.State, wheelchair)
		}
	}
	stats.computeRates()
	return stats, nil
}

// Summary counts authoritative records per state with a service date in
// [from, to]. A zero to means today; a zero from means one month before to.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "statistics.Summary")
	defer span.End()

	if to.IsZero() {
		to = models.DateOf(requestcontext.Now(ctx), s.location)
	}
	if from.IsZero() {
		from = to.AddDate(0, -defaultSummaryMonths, 0)
	}
	if to.Before(from) {
		return nil, dErrors.New(dErrors.CodeValidation, "hasta must not be before desde")
	}

	records, err := s.store.LatestRecordsInRange(ctx, from, to, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status records")
	}
	sum := &Summary{From: models.FormatDate(from), To: models.FormatDate(to)}
	for _, rec := range records {
		sum.add(rec.State)
	}
	return sum, nil
}
