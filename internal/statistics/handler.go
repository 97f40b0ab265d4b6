package statistics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/httputil"
	"medtransit/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Reader is the read-only surface the handler depends on.
type Reader interface {
	AgendaStatistics(ctx context.Context, agendaID uuid.UUID, period Period) (*AgendaStatistics, error)
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
}

// Handler wires the statistics endpoints to a Reader.
type Handler struct {
	service Reader
	logger  *slog.Logger
}

func NewHandler(service Reader, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts statistics endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/choferes/{agendaId}/estadisticas", h.HandleAgendaStatistics)
	r.Get("/historico-traslados/estadisticas", h.HandleSummary)
}

// HandleAgendaStatistics handles GET /choferes/{agendaId}/estadisticas?periodo=.
func (h *Handler) HandleAgendaStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	agendaID, err := uuid.Parse(chi.URLParam(r, "agendaId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid agenda id"))
		return
	}
	period, err := ParsePeriod(r.URL.Query().Get("periodo"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.service.AgendaStatistics(ctx, agendaID, period)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute agenda statistics",
			"request_id", requestID,
			"agenda_id", agendaID.String(),
			"period", string(period),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleSummary handles GET /historico-traslados/estadisticas?desde=&hasta=.
// fechaInicio and fechaFin are accepted as aliases.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	q := r.URL.Query()

	from, err := optionalDate(q.Get("desde"), q.Get("fechaInicio"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	to, err := optionalDate(q.Get("hasta"), q.Get("fechaFin"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sum, err := h.service.Summary(ctx, from, to)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to summarise transfers",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sum)
}

// optionalDate parses the first non-empty value; none yields the zero time.
func optionalDate(values ...string) (time.Time, error) {
	for _, v := range values {
		if v != "" {
			return models.ParseDate(v)
		}
	}
	return time.Time{}, nil
}
