// Package generator writes the PENDING status row for every schedule that
// applies on a date. Runs are idempotent: rows that already exist are skipped.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"medtransit/internal/transfer/metrics"
	"medtransit/internal/transfer/models"
	"medtransit/internal/transfer/recurrence"
	"medtransit/internal/transfer/service"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/sentinel"
	"medtransit/pkg/requestcontext"
)

var tracer = otel.Tracer("medtransit/internal/transfer/generator")

type Store interface {
	ListActiveSchedules(ctx context.Context) ([]*models.Schedule, error)
	FindRun(ctx context.Context, date time.Time) (*models.GenerationRun, error)
	SaveRun(ctx context.Context, run *models.GenerationRun) error
}

type Generator struct {
	store    Store
	tx       service.StoreTx
	logger   *slog.Logger
	metrics  *metrics.Metrics
	location *time.Location
}

type Option func(*Generator)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// WithLocation sets the zone RunScheduled computes "today" in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.location = loc
		}
	}
}

func New(store Store, tx service.StoreTx, opts ...Option) *Generator {
	g := &Generator{
		store:    store,
		tx:       tx,
		logger:   slog.Default(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateForDate creates the missing PENDING rows for date. Each schedule is
// handled in its own transaction; a failing schedule is logged and counted and
// does not stop the run. The run marker is saved at the end.
func (g *Generator) GenerateForDate(ctx context.Context, date time.Time, trigger models.Trigger) (*models.GenerationRun, error) {
	date = models.DateOf(date, time.UTC)
	ctx, span := tracer.Start(ctx, "generator.GenerateForDate")
	span.SetAttributes(
		attribute.String("service_date", models.FormatDate(date)),
		attribute.String("trigger", string(trigger)),
	)
	defer span.End()

	started := time.Now()
	run := &models.GenerationRun{
		ServiceDate: date,
		Trigger:     trigger,
		StartedAt:   requestcontext.Now(ctx),
	}

	schedules, err := g.store.ListActiveSchedules(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list schedules")
		g.metrics.ObserveGeneration("failed", 0, time.Since(started))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active schedules")
	}

	applicable := recurrence.ApplicableOn(schedules, date)
	run.Applicable = len(applicable)
	for _, sch := range applicable {
		created, err := g.ensurePending(ctx, sch.ID, date)
		switch {
		case err != nil:
			run.Failed++
			g.logger.ErrorContext(ctx, "failed to generate status record",
				"schedule_id", sch.ID.String(),
				"service_date", models.FormatDate(date),
				"error", err.Error(),
			)
		case created:
			run.Created++
		default:
			run.Skipped++
		}
	}

	run.FinishedAt = requestcontext.Now(ctx)
	if err := g.store.SaveRun(ctx, run); err != nil {
		span.RecordError(err)
		g.metrics.ObserveGeneration("failed", run.Created, time.Since(started))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save generation run")
	}

	outcome := "completed"
	if run.Failed > 0 {
		outcome = "partial"
		span.SetStatus(codes.Error, "some schedules failed")
	}
	span.SetAttributes(
		attribute.Int("applicable", run.Applicable),
		attribute.Int("created", run.Created),
		attribute.Int("failed", run.Failed),
	)
	g.metrics.ObserveGeneration(outcome, run.Created, time.Since(started))
	g.logger.InfoContext(ctx, "status generation finished",
		"service_date", models.FormatDate(date),
		"trigger", string(trigger),
		"applicable", run.Applicable,
		"created", run.Created,
		"skipped", run.Skipped,
		"failed", run.Failed,
	)
	return run, nil
}

func (g *Generator) ensurePending(ctx context.Context, scheduleID uuid.UUID, date time.Time) (bool, error) {
	var created bool
	err := g.tx.RunInTx(service.WithTxKey(ctx, scheduleID.String()), func(ctx context.Context, store service.Store) error {
		var err error
		created, err = store.InsertFirstRecord(ctx, models.NewPendingRecord(scheduleID, date, requestcontext.Now(ctx)))
		return err
	})
	return created, err
}

// AlreadyGenerated reports whether a run for date completed without failures.
// A partial run leaves the date open so the next scheduled run retries it.
func (g *Generator) AlreadyGenerated(ctx context.Context, date time.Time) (bool, error) {
	run, err := g.store.FindRun(ctx, models.DateOf(date, time.UTC))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load generation run")
	}
	return run.Failed == 0, nil
}

// RunScheduled generates today's rows unless that already happened. It never
// fails; every problem is logged.
func (g *Generator) RunScheduled(ctx context.Context) {
	today := models.DateOf(requestcontext.Now(ctx), g.location)
	done, err := g.AlreadyGenerated(ctx, today)
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to check generation marker",
			"service_date", models.FormatDate(today),
			"error", err.Error(),
		)
		return
	}
	if done {
		g.metrics.ObserveGeneration("skipped", 0, 0)
		g.logger.InfoContext(ctx, "status generation already done", "service_date", models.FormatDate(today))
		return
	}
	if _, err := g.GenerateForDate(ctx, today, models.TriggerScheduled); err != nil {
		g.logger.ErrorContext(ctx, "scheduled status generation failed",
			"service_date", models.FormatDate(today),
			"error", err.Error(),
		)
	}
}

// Backfill generates every date in [from, to] in order and returns the runs.
// It stops at the first run-level error.
func (g *Generator) Backfill(ctx context.Context, from, to time.Time) ([]*models.GenerationRun, error) {
	from, to = models.DateOf(from, time.UTC), models.DateOf(to, time.UTC)
	if to.Before(from) {
		return nil, dErrors.New(dErrors.CodeValidation, "backfill range end is before its start")
	}
	var runs []*models.GenerationRun
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return runs, dErrors.Wrap(err, dErrors.CodeTimeout, "backfill interrupted")
		}
		run, err := g.GenerateForDate(ctx, d, models.TriggerBackfill)
		if err != nil {
			return runs, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
