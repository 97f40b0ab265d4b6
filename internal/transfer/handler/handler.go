// Package handler exposes schedules, the daily transfer lifecycle and the
// driver and admin listings over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medtransit/internal/distance"
	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/httputil"
	"medtransit/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the transfer operations the handler calls.
type Service interface {
	ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error)
	GetSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	CreateSchedule(ctx context.Context, fields models.ScheduleFields) (*models.Schedule, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, fields models.ScheduleFields) (*models.Schedule, error)
	DeleteSchedule(ctx context.Context, id uuid.UUID) error

	Start(ctx context.Context, scheduleID uuid.UUID, date time.Time, actor string) (*models.StatusRecord, error)
	Finish(ctx context.Context, scheduleID uuid.UUID, date time.Time, actor string) (*models.StatusRecord, error)
	Cancel(ctx context.Context, scheduleID uuid.UUID, date time.Time, reason, actor string) (*models.StatusRecord, error)
	Status(ctx context.Context, scheduleID uuid.UUID, date time.Time) (models.StatusResponse, error)
	History(ctx context.Context, scheduleID uuid.UUID, date time.Time) ([]*models.StatusRecord, error)

	DriverDay(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.DailyTransfer, error)
	DriverWeek(ctx context.Context, driverID uuid.UUID, date time.Time) ([]models.DayTransfers, error)
	AdminDay(ctx context.Context, date time.Time, state models.State) ([]models.DailyTransfer, error)

	Today(ctx context.Context) time.Time
}

// Generator is the manual trigger of daily PENDING generation.
type Generator interface {
	GenerateForDate(ctx context.Context, date time.Time, trigger models.Trigger) (*models.GenerationRun, error)
}

// Handler wires transfer endpoints to the transfer service.
type Handler struct {
	service   Service
	generator Generator
	distance  distance.Lookup
	logger    *slog.Logger
}

// New constructs a transfer handler. A nil lookup makes calcular-tiempo
// answer upstream_unavailable.
func New(service Service, generator Generator, lookup distance.Lookup, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		generator: generator,
		distance:  lookup,
		logger:    logger,
	}
}

// Register mounts transfer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/traslados", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)

		r.Get("/admin/dia", h.HandleAdminDay)
		r.Get("/chofer/{choferId}/dia", h.HandleDriverDay)
		r.Get("/chofer/{choferId}/semana", h.HandleDriverWeek)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)

			r.Post("/iniciar", h.HandleStart)
			r.Post("/finalizar", h.HandleFinish)
			r.Post("/cancelar", h.HandleCancel)
			r.Get("/estado", h.HandleStatus)
			r.Get("/historial", h.HandleHistory)

			r.Get("/calcular-tiempo", h.HandleTravelTime)
			r.Post("/calcular-tiempo", h.HandleTravelTime)
		})
	})
	r.Post("/test/generar-historicos", h.HandleGenerate)
}

// HandleList handles GET /traslados?agendaId=&pacienteId=&activo=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	schedules, err := h.service.ListSchedules(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list schedules", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewScheduleResponses(schedules))
}

// HandleGet handles GET /traslados/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sch, err := h.service.GetSchedule(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get schedule", err, "schedule_id", id.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewScheduleResponse(sch))
}

// HandleCreate handles POST /traslados.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fields, ok := decodeSchedule(w, r)
	if !ok {
		return
	}
	sch, err := h.service.CreateSchedule(ctx, fields)
	if err != nil {
		h.fail(ctx, w, "failed to create schedule", err)
		return
	}
	h.logger.InfoContext(ctx, "schedule created",
		"request_id", requestcontext.RequestID(ctx),
		"schedule_id", sch.ID.String(),
		"agenda_id", sch.AgendaID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, models.NewScheduleResponse(sch))
}

// HandleUpdate handles PUT /traslados/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fields, ok := decodeSchedule(w, r)
	if !ok {
		return
	}
	sch, err := h.service.UpdateSchedule(ctx, id, fields)
	if err != nil {
		h.fail(ctx, w, "failed to update schedule", err, "schedule_id", id.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewScheduleResponse(sch))
}

// HandleDelete handles DELETE /traslados/{id}. The schedule is deactivated, not removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSchedule(ctx, id); err != nil {
		h.fail(ctx, w, "failed to delete schedule", err, "schedule_id", id.String())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStart handles POST /traslados/{id}/iniciar.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(ctx context.Context, id uuid.UUID, date time.Time, actor string) (*models.StatusRecord, error) {
		return h.service.Start(ctx, id, date, actor)
	})
}

// HandleFinish handles POST /traslados/{id}/finalizar.
func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, func(ctx context.Context, id uuid.UUID, date time.Time, actor string) (*models.StatusRecord, error) {
		return h.service.Finish(ctx, id, date, actor)
	})
}

type transitionFunc func(ctx context.Context, id uuid.UUID, date time.Time, actor string) (*models.StatusRecord, error)

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, do transitionFunc) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.TransitionRequest
	if err := decodeOptional(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := h.date(ctx, req.Date, r.URL.Query().Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := do(ctx, id, date, actorOf(ctx, req.ActorID))
	if err != nil {
		h.fail(ctx, w, "transfer transition failed", err,
			"schedule_id", id.String(),
			"service_date", models.FormatDate(date),
		)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewStatusResponse(rec))
}

// HandleCancel handles POST /traslados/{id}/cancelar.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.CancelRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := h.date(ctx, req.Date, r.URL.Query().Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.service.Cancel(ctx, id, date, req.Reason, actorOf(ctx, req.ActorID))
	if err != nil {
		h.fail(ctx, w, "transfer cancellation failed", err,
			"schedule_id", id.String(),
			"service_date", models.FormatDate(date),
		)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewStatusResponse(rec))
}

// HandleStatus handles GET /traslados/{id}/estado?fecha=.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	date, err := h.date(ctx, r.URL.Query().Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := h.service.Status(ctx, id, date)
	if err != nil {
		h.fail(ctx, w, "failed to get transfer status", err, "schedule_id", id.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// HandleHistory handles GET /traslados/{id}/historial?fecha=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	date, err := h.date(ctx, r.URL.Query().Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rows, err := h.service.History(ctx, id, date)
	if err != nil {
		h.fail(ctx, w, "failed to get transfer history", err, "schedule_id", id.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewStatusResponses(rows))
}

// HandleDriverDay handles GET /traslados/chofer/{choferId}/dia?fecha=.
func (h *Handler) HandleDriverDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := pathID(w, r, "choferId")
	if !ok {
		return
	}
	date, err := h.date(ctx, r.URL.Query().Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	transfers, err := h.service.DriverDay(ctx, driverID, date)
	if err != nil {
		h.fail(ctx, w, "failed to list driver day", err, "driver_id", driverID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transfers)
}

// HandleDriverWeek handles GET /traslados/chofer/{choferId}/semana?fecha=.
func (h *Handler) HandleDriverWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := pathID(w, r, "choferId")
	if !ok {
		return
	}
	date, err := h.date(ctx, r.URL.Query().Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	week, err := h.service.DriverWeek(ctx, driverID, date)
	if err != nil {
		h.fail(ctx, w, "failed to list driver week", err, "driver_id", driverID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, week)
}

// HandleAdminDay handles GET /traslados/admin/dia?fecha=&estado=.
func (h *Handler) HandleAdminDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	date, err := h.date(ctx, q.Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var state models.State
	if raw := q.Get("estado"); raw != "" {
		if state, err = models.ParseState(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	transfers, err := h.service.AdminDay(ctx, date, state)
	if err != nil {
		h.fail(ctx, w, "failed to list admin day", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transfers)
}

type travelTimeResponse struct {
	ScheduleID uuid.UUID `json:"idTraslado"`
	*distance.Route
}

// HandleTravelTime handles /traslados/{id}/calcular-tiempo. Lookup failures
// never touch schedule or status data.
func (h *Handler) HandleTravelTime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if h.distance == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUpstreamUnavailable, "distance lookup is not configured"))
		return
	}
	sch, err := h.service.GetSchedule(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get schedule", err, "schedule_id", id.String())
		return
	}
	route, err := h.distance.Lookup(ctx, sch.Origin, sch.Destination)
	if err != nil {
		if _, ok := dErrors.As(err); !ok {
			err = dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "distance lookup failed")
		}
		h.fail(ctx, w, "distance lookup failed", err, "schedule_id", id.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, travelTimeResponse{ScheduleID: id, Route: route})
}

// HandleGenerate handles POST /test/generar-historicos[?fecha=].
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, err := h.date(ctx, r.URL.Query().Get("fecha"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	run, err := h.generator.GenerateForDate(ctx, date, models.TriggerManual)
	if err != nil {
		h.fail(ctx, w, "manual generation failed", err, "service_date", models.FormatDate(date))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewGenerationRunResponse(run))
}

// date parses the first non-empty value, defaulting to today.
func (h *Handler) date(ctx context.Context, values ...string) (time.Time, error) {
	for _, v := range values {
		if v != "" {
			return models.ParseDate(v)
		}
	}
	return h.service.Today(ctx), nil
}

// fail logs err and writes it. Client errors are logged at warn.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, args ...any) {
	attrs := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err.Error()}, args...)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

// actorOf prefers the token's actor over the one named in the body.
func actorOf(ctx context.Context, fromBody string) string {
	if actor := requestcontext.Actor(ctx); actor != "" {
		return actor
	}
	return fromBody
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func decodeSchedule(w http.ResponseWriter, r *http.Request) (models.ScheduleFields, bool) {
	var req models.ScheduleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return models.ScheduleFields{}, false
	}
	fields, err := req.Fields()
	if err != nil {
		httputil.WriteError(w, err)
		return models.ScheduleFields{}, false
	}
	return fields, true
}

// decodeOptional decodes a JSON body if there is one.
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	if err := httputil.DecodeJSON(r, dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func parseFilter(r *http.Request) (models.ScheduleFilter, error) {
	q := r.URL.Query()
	var filter models.ScheduleFilter
	if raw := q.Get("agendaId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid agendaId")
		}
		filter.AgendaID = &id
	}
	if raw := q.Get("pacienteId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid pacienteId")
		}
		filter.PatientID = &id
	}
	if raw := q.Get("activo"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid activo")
		}
		filter.Active = &active
	}
	return filter, nil
}
