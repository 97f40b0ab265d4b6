package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"medtransit/internal/transfer/conflict"
	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/sentinel"
	"medtransit/pkg/requestcontext"
)

func (s *Service) ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error) {
	schedules, err := s.store.ListSchedules(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	return schedules, nil
}

func (s *Service) GetSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	return s.findSchedule(ctx, s.store, id)
}

// CreateSchedule validates fields, checks the directory, and stores the
// schedule if it clashes with no other active schedule.
func (s *Service) CreateSchedule(ctx context.Context, fields models.ScheduleFields) (sch *models.Schedule, err error) {
	ctx, span := s.startSpan(ctx, "transfer.CreateSchedule")
	defer func() { endSpan(span, err) }()

	now := requestcontext.Now(ctx)
	sch, err = models.NewSchedule(uuid.New(), fields, now)
	if err != nil {
		return nil, invariantToValidation(err)
	}
	span.SetAttributes(attribute.String("schedule_id", sch.ID.String()))
	if err := s.checkDirectory(ctx, sch); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(WithTxKey(ctx, scheduleWritesKey), func(ctx context.Context, store Store) error {
		if err := s.gate(ctx, store, sch, uuid.Nil); err != nil {
			return err
		}
		if err := store.CreateSchedule(ctx, sch); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "schedule already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create schedule")
		}
		return nil
	})
	if err != nil {
		return nil, domainOr(err, "failed to create schedule")
	}
	s.metrics.IncrementScheduleWrite("create")
	return sch, nil
}

// UpdateSchedule replaces the mutable fields of a schedule. The same gates as
// creation apply, with the schedule itself excluded from conflict checks.
func (s *Service) UpdateSchedule(ctx context.Context, id uuid.UUID, fields models.ScheduleFields) (sch *models.Schedule, err error) {
	ctx, span := s.startSpan(ctx, "transfer.UpdateSchedule", attribute.String("schedule_id", id.String()))
	defer func() { endSpan(span, err) }()

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(WithTxKey(ctx, scheduleWritesKey), func(ctx context.Context, store Store) error {
		current, err := s.findSchedule(ctx, store, id)
		if err != nil {
			return err
		}
		if err := current.Apply(fields, now); err != nil {
			return invariantToValidation(err)
		}
		if err := s.checkDirectory(ctx, current); err != nil {
			return err
		}
		if err := s.gate(ctx, store, current, current.ID); err != nil {
			return err
		}
		if err := store.UpdateSchedule(ctx, current); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "schedule not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update schedule")
		}
		sch = current
		return nil
	})
	if err != nil {
		return nil, domainOr(err, "failed to update schedule")
	}
	s.metrics.IncrementScheduleWrite("update")
	return sch, nil
}

// DeleteSchedule deactivates a schedule. Its status history is kept.
// Deleting an inactive schedule is a no-op.
func (s *Service) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(WithTxKey(ctx, scheduleWritesKey), func(ctx context.Context, store Store) error {
		sch, err := s.findSchedule(ctx, store, id)
		if err != nil {
			return err
		}
		if !sch.Active {
			return nil
		}
		sch.Deactivate(now)
		if err := store.UpdateSchedule(ctx, sch); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete schedule")
		}
		return nil
	})
	if err != nil {
		return domainOr(err, "failed to delete schedule")
	}
	s.metrics.IncrementScheduleWrite("delete")
	return nil
}

// gate serialises concurrent writers on the same agenda and patient, then runs
// the conflict checks inside the transaction.
func (s *Service) gate(ctx context.Context, store Store, sch *models.Schedule, excludeID uuid.UUID) error {
	if !sch.Active {
		return nil
	}
	if err := store.LockScheduling(ctx, sch.AgendaID, sch.PatientID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock schedules")
	}
	if err := conflict.New(store).Check(ctx, sch, excludeID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncrementConflict()
		}
		return err
	}
	return nil
}

// checkDirectory requires the referenced agenda and patient to exist, and to be
// active when the schedule itself is active.
func (s *Service) checkDirectory(ctx context.Context, sch *models.Schedule) error {
	agenda, err := s.directory.FindAgenda(ctx, sch.AgendaID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "agenda not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agenda")
	}
	patient, err := s.directory.FindPatient(ctx, sch.PatientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "patient not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load patient")
	}
	if !sch.Active {
		return nil
	}
	if !agenda.Active {
		return dErrors.New(dErrors.CodeValidation, "agenda is not active")
	}
	if !patient.Active {
		return dErrors.New(dErrors.CodeValidation, "patient is not active")
	}
	return nil
}

func invariantToValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}
