package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"medtransit/internal/transfer/models"
	"medtransit/internal/transfer/recurrence"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/sentinel"
	"medtransit/pkg/requestcontext"
)

// EnsureRecord returns the authoritative record for (scheduleID, date),
// creating the PENDING row when none exists yet. Calling it repeatedly creates
// at most one row.
func (s *Service) EnsureRecord(ctx context.Context, scheduleID uuid.UUID, date time.Time) (*models.StatusRecord, error) {
	date = models.DateOf(date, time.UTC)
	var rec *models.StatusRecord
	err := s.tx.RunInTx(WithTxKey(ctx, scheduleID.String()), func(ctx context.Context, store Store) error {
		sch, err := s.findSchedule(ctx, store, scheduleID)
		if err != nil {
			return err
		}
		rec, err = s.ensureRecord(ctx, store, sch, date, true)
		return err
	})
	if err != nil {
		return nil, domainOr(err, "failed to ensure status record")
	}
	return rec, nil
}

// ensureRecord must run inside a transaction keyed by the schedule.
// An existing row wins even if the schedule no longer applies. With
// requireApplies unset the PENDING row is created for any date, so start and
// cancel work on deactivated schedules and off-calendar dates.
func (s *Service) ensureRecord(ctx context.Context, store Store, sch *models.Schedule, date time.Time, requireApplies bool) (*models.StatusRecord, error) {
	latest, err := store.LatestRecord(ctx, sch.ID, date)
	if err == nil {
		return latest, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status record")
	}
	if requireApplies && !recurrence.Applies(sch, date) {
		return nil, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("schedule has no transfer on %s", models.FormatDate(date)))
	}

	first := models.NewPendingRecord(sch.ID, date, requestcontext.Now(ctx))
	created, err := store.InsertFirstRecord(ctx, first)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create status record")
	}
	if created {
		return first, nil
	}
	// Lost the race to the generator or another request.
	latest, err = store.LatestRecord(ctx, sch.ID, date)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status record")
	}
	return latest, nil
}

// Start moves the transfer to STARTED, creating the PENDING row first if
// needed, whether or not the schedule covers date.
func (s *Service) Start(ctx context.Context, scheduleID uuid.UUID, date time.Time, actor string) (*models.StatusRecord, error) {
	return s.transition(ctx, transition{
		scheduleID: scheduleID,
		date:       date,
		to:         models.StateStarted,
		actor:      actor,
		ensure:     true,
	})
}

// Finish moves a STARTED transfer to FINISHED. It never creates rows.
func (s *Service) Finish(ctx context.Context, scheduleID uuid.UUID, date time.Time, actor string) (*models.StatusRecord, error) {
	return s.transition(ctx, transition{
		scheduleID: scheduleID,
		date:       date,
		to:         models.StateFinished,
		actor:      actor,
	})
}

// Cancel moves a PENDING or STARTED transfer to CANCELED and then tells the
// driver. With no row yet, PENDING is written first, so a transfer can be
// canceled before the generator reached it. A failed notification does not
// undo the cancellation.
func (s *Service) Cancel(ctx context.Context, scheduleID uuid.UUID, date time.Time, reason, actor string) (*models.StatusRecord, error) {
	return s.transition(ctx, transition{
		scheduleID: scheduleID,
		date:       date,
		to:         models.StateCanceled,
		actor:      actor,
		reason:     reason,
		ensure:     true,
	})
}

type transition struct {
	scheduleID uuid.UUID
	date       time.Time
	to         models.State
	actor      string
	reason     string
	ensure     bool
}

func (s *Service) transition(ctx context.Context, t transition) (rec *models.StatusRecord, err error) {
	t.date = models.DateOf(t.date, time.UTC)
	ctx, span := s.startSpan(ctx, "transfer.Transition",
		attribute.String("schedule_id", t.scheduleID.String()),
		attribute.String("service_date", models.FormatDate(t.date)),
		attribute.String("state", string(t.to)),
	)
	defer func() { endSpan(span, err) }()

	if t.to == models.StateCanceled && isBlank(t.reason) {
		return nil, dErrors.New(dErrors.CodeValidation, "cancellation reason is required")
	}
	if isBlank(t.actor) {
		return nil, dErrors.New(dErrors.CodeValidation, "acting user is required")
	}

	now := requestcontext.Now(ctx)
	var (
		sch  *models.Schedule
		from models.State
	)
	err = s.tx.RunInTx(WithTxKey(ctx, t.scheduleID.String()), func(ctx context.Context, store Store) error {
		var err error
		sch, err = s.findSchedule(ctx, store, t.scheduleID)
		if err != nil {
			return err
		}
		var current *models.StatusRecord
		if t.ensure {
			current, err = s.ensureRecord(ctx, store, sch, t.date, false)
		} else {
			current, err = s.latestForTransition(ctx, store, sch, t.date)
		}
		if err != nil {
			return err
		}
		from = current.State
		next, err := current.Next(t.to, t.actor, t.reason, now)
		if err != nil {
			return err
		}
		if err := store.AppendRecord(ctx, next); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				s.metrics.IncrementTransitionRace()
				return dErrors.New(dErrors.CodeConflict, "concurrent update, retry")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transition")
		}
		rec = next
		return nil
	})
	if err != nil {
		return nil, domainOr(err, "failed to record transition")
	}

	s.metrics.IncrementTransition(string(rec.State))
	s.afterCommit(ctx, sch, from, rec)
	return rec, nil
}

func (s *Service) latestForTransition(ctx context.Context, store Store, sch *models.Schedule, date time.Time) (*models.StatusRecord, error) {
	latest, err := store.LatestRecord(ctx, sch.ID, date)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidState,
				fmt.Sprintf("transfer on %s has not been started", models.FormatDate(date)))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status record")
	}
	return latest, nil
}

// afterCommit runs the side effects of a committed transition. They are
// detached from request cancellation and their failures are only logged.
func (s *Service) afterCommit(ctx context.Context, sch *models.Schedule, from models.State, rec *models.StatusRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	s.publish(ctx, models.NewStatusChangedEvent(sch, from, rec))
	if rec.State == models.StateCanceled {
		s.notifyCancel(ctx, sch, rec)
	}
}

func (s *Service) publish(ctx context.Context, event models.StatusChangedEvent) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logError(ctx, "failed to encode status event", err, "schedule_id", event.ScheduleID.String())
		return
	}
	if err := s.events.Publish(ctx, event.Key(), payload); err != nil {
		s.logError(ctx, "failed to publish status event", err,
			"schedule_id", event.ScheduleID.String(),
			"service_date", event.ServiceDate,
			"seq", event.Seq,
		)
	}
}

func (s *Service) notifyCancel(ctx context.Context, sch *models.Schedule, rec *models.StatusRecord) {
	if s.notifier == nil {
		return
	}
	agenda, err := s.directory.FindAgenda(ctx, sch.AgendaID)
	if err != nil {
		s.logError(ctx, "failed to load agenda for cancel notification", err, "agenda_id", sch.AgendaID.String())
		return
	}
	if agenda.NotifyChatID == "" {
		s.logger.DebugContext(ctx, "agenda has no notification recipient", "agenda_id", agenda.ID.String())
		return
	}
	patientName := sch.PatientID.String()
	if patient, err := s.directory.FindPatient(ctx, sch.PatientID); err == nil {
		patientName = patient.Name
	}
	msg := fmt.Sprintf("Transfer canceled\nPatient: %s\nDate: %s\nTime: %s\nReason: %s",
		patientName, models.FormatDate(rec.ServiceDate), sch.Time, rec.Reason)
	if err := s.notifier.Notify(ctx, agenda.NotifyChatID, msg); err != nil {
		s.logError(ctx, "failed to notify driver of cancellation", err,
			"schedule_id", sch.ID.String(),
			"agenda_id", agenda.ID.String(),
		)
	}
}

// Status returns the authoritative state for (scheduleID, date). When no row
// exists but the schedule applies on date, a synthetic PENDING is returned.
func (s *Service) Status(ctx context.Context, scheduleID uuid.UUID, date time.Time) (models.StatusResponse, error) {
	date = models.DateOf(date, time.UTC)
	sch, err := s.findSchedule(ctx, s.store, scheduleID)
	if err != nil {
		return models.StatusResponse{}, err
	}
	latest, err := s.store.LatestRecord(ctx, scheduleID, date)
	switch {
	case err == nil:
		return models.NewStatusResponse(latest), nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return models.StatusResponse{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status record")
	case recurrence.Applies(sch, date):
		return models.PendingStatusResponse(scheduleID, date), nil
	default:
		return models.StatusResponse{}, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("schedule has no transfer on %s", models.FormatDate(date)))
	}
}

// History lists every row for (scheduleID, date) in sequence order.
func (s *Service) History(ctx context.Context, scheduleID uuid.UUID, date time.Time) ([]*models.StatusRecord, error) {
	date = models.DateOf(date, time.UTC)
	if _, err := s.findSchedule(ctx, s.store, scheduleID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListRecords(ctx, scheduleID, date)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list status records")
	}
	return rows, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
