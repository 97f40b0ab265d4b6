package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"medtransit/internal/transfer/metrics"
	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/sentinel"
	"medtransit/pkg/requestcontext"
)

var tracer = otel.Tracer("medtransit/internal/transfer/service")

// notifyTimeout bounds post-commit side effects so a slow collaborator
// cannot hold the request.
const notifyTimeout = 5 * time.Second

// Service orchestrates schedule maintenance and the per-day transfer lifecycle.
type Service struct {
	store     Store
	tx        StoreTx
	directory Directory
	notifier  Notifier
	events    EventPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	location  *time.Location
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithLocation sets the zone "today" is computed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New constructs a Service. Reads go to store; every write runs through tx.
func New(store Store, tx StoreTx, dir Directory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		tx:        tx,
		directory: dir,
		logger:    slog.Default(),
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current service date in the configured location.
func (s *Service) Today(ctx context.Context) time.Time {
	return models.DateOf(requestcontext.Now(ctx), s.location)
}

// ResolveDate turns an optional "YYYY-MM-DD" into a service date, defaulting to today.
func (s *Service) ResolveDate(ctx context.Context, raw string) (time.Time, error) {
	if raw == "" {
		return s.Today(ctx), nil
	}
	return models.ParseDate(raw)
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func (s *Service) findSchedule(ctx context.Context, store ScheduleStore, id uuid.UUID) (*models.Schedule, error) {
	sch, err := store.FindSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "schedule not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load schedule")
	}
	return sch, nil
}

func (s *Service) logError(ctx context.Context, msg string, err error, args ...any) {
	if s.logger == nil {
		return
	}
	attrs := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err.Error()}, args...)
	s.logger.ErrorContext(ctx, msg, attrs...)
}

// domainOr keeps domain errors raised inside a transaction and wraps anything
// else (begin, commit, driver failures) as internal.
func domainOr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
