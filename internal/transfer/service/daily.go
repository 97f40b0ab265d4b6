package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"medtransit/internal/directory"
	"medtransit/internal/transfer/models"
	"medtransit/internal/transfer/recurrence"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/sentinel"
)

// AgendaDay lists what one driver has to do on date, in time order.
func (s *Service) AgendaDay(ctx context.Context, agendaID uuid.UUID, date time.Time) ([]models.DailyTransfer, error) {
	date = models.DateOf(date, time.UTC)
	agenda, err := s.findAgenda(ctx, agendaID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.store.ListActiveByAgenda(ctx, agendaID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	days, err := s.project(ctx, recurrence.ApplicableOn(schedules, date), date, date, map[uuid.UUID]*directory.Agenda{agenda.ID: agenda})
	if err != nil {
		return nil, err
	}
	return nonNil(days[models.FormatDate(date)]), nil
}

// AgendaWeek lists the Monday to Sunday week containing date, one entry per day.
func (s *Service) AgendaWeek(ctx context.Context, agendaID uuid.UUID, date time.Time) ([]models.DayTransfers, error) {
	from := models.WeekStart(models.DateOf(date, time.UTC))
	to := from.AddDate(0, 0, 6)
	agenda, err := s.findAgenda(ctx, agendaID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.store.ListActiveByAgenda(ctx, agendaID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	var inWeek []*models.Schedule
	for _, sch := range schedules {
		if len(recurrence.Occurrences(sch, from, to)) > 0 {
			inWeek = append(inWeek, sch)
		}
	}
	byDay, err := s.project(ctx, inWeek, from, to, map[uuid.UUID]*directory.Agenda{agenda.ID: agenda})
	if err != nil {
		return nil, err
	}

	week := make([]models.DayTransfers, 0, 7)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := models.FormatDate(d)
		transfers := nonNil(byDay[key])
		week = append(week, models.DayTransfers{
			Date:      key,
			Weekday:   models.WeekdayName(models.ISOWeekday(d)),
			Transfers: transfers,
		})
	}
	return week, nil
}

// DriverDay is AgendaDay for the agenda driverID drives.
func (s *Service) DriverDay(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.DailyTransfer, error) {
	agenda, err := s.findDriverAgenda(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return s.AgendaDay(ctx, agenda.ID, date)
}

// DriverWeek is AgendaWeek for the agenda driverID drives.
func (s *Service) DriverWeek(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.DayTransfers, error) {
	agenda, err := s.findDriverAgenda(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return s.AgendaWeek(ctx, agenda.ID, date)
}

// AdminDay lists every agenda's transfers on date. A non-empty state keeps
// only transfers currently in that state.
func (s *Service) AdminDay(ctx context.Context, date time.Time, state models.State) ([]models.DailyTransfer, error) {
	date = models.DateOf(date, time.UTC)
	schedules, err := s.store.ListActiveSchedules(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	applicable := recurrence.ApplicableOn(schedules, date)

	agendaIDs := make([]uuid.UUID, 0, len(applicable))
	for _, sch := range applicable {
		agendaIDs = append(agendaIDs, sch.AgendaID)
	}
	agendas, err := s.directory.FindAgendas(ctx, agendaIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agendas")
	}

	days, err := s.project(ctx, applicable, date, date, agendas)
	if err != nil {
		return nil, err
	}
	transfers := nonNil(days[models.FormatDate(date)])
	if state == "" {
		return transfers, nil
	}
	out := make([]models.DailyTransfer, 0, len(transfers))
	for _, t := range transfers {
		if t.State == state {
			out = append(out, t)
		}
	}
	return out, nil
}

// project builds DailyTransfers for every date in [from, to] each schedule
// applies on, keyed by formatted date. Schedules keep their input order.
func (s *Service) project(ctx context.Context, schedules []*models.Schedule, from, to time.Time, agendas map[uuid.UUID]*directory.Agenda) (map[string][]models.DailyTransfer, error) {
	out := make(map[string][]models.DailyTransfer)
	if len(schedules) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(schedules))
	patientIDs := make([]uuid.UUID, 0, len(schedules))
	for _, sch := range schedules {
		ids = append(ids, sch.ID)
		patientIDs = append(patientIDs, sch.PatientID)
	}
	records, err := s.store.LatestRecordsInRange(ctx, from, to, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status records")
	}
	type pair struct {
		id   uuid.UUID
		date string
	}
	current := make(map[pair]*models.StatusRecord, len(records))
	for _, r := range records {
		current[pair{r.ScheduleID, models.FormatDate(r.ServiceDate)}] = r
	}
	patients, err := s.directory.FindPatients(ctx, patientIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load patients")
	}

	for _, sch := range schedules {
		for _, d := range recurrence.Occurrences(sch, from, to) {
			key := models.FormatDate(d)
			t := models.NewDailyTransfer(sch, d, current[pair{sch.ID, key}])
			if p, ok := patients[sch.PatientID]; ok {
				t.PatientName = p.Name
				t.RequiresWheelchair = p.RequiresWheelchair
			}
			if a, ok := agendas[sch.AgendaID]; ok {
				t.DriverName = a.DriverName
			}
			out[key] = append(out[key], t)
		}
	}
	return out, nil
}

func (s *Service) findAgenda(ctx context.Context, id uuid.UUID) (*directory.Agenda, error) {
	agenda, err := s.directory.FindAgenda(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "agenda not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agenda")
	}
	return agenda, nil
}

func (s *Service) findDriverAgenda(ctx context.Context, driverID uuid.UUID) (*directory.Agenda, error) {
	agenda, err := s.directory.FindAgendaByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "driver has no agenda")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load driver agenda")
	}
	return agenda, nil
}

func nonNil(transfers []models.DailyTransfer) []models.DailyTransfer {
	if transfers == nil {
		return []models.DailyTransfer{}
	}
	return transfers
}
