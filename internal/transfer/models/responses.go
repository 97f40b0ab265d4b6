package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleResponse is the wire form of a Schedule.
type ScheduleResponse struct {
	ID          uuid.UUID `json:"id"`
	AgendaID    uuid.UUID `json:"idAgenda"`
	PatientID   uuid.UUID `json:"idPaciente"`
	Origin      string    `json:"direccionOrigen"`
	Destination string    `json:"direccionDestino"`
	Time        ClockTime `json:"horaProgramada"`
	Weekdays    Weekdays  `json:"diasSemana"`
	StartDate   string    `json:"fechaInicio"`
	EndDate     *string   `json:"fechaFin,omitempty"`
	Active      bool      `json:"activo"`
	Notes       string    `json:"observaciones,omitempty"`
	CreatedAt   time.Time `json:"creadoEn"`
	UpdatedAt   time.Time `json:"actualizadoEn"`
}

func NewScheduleResponse(s *Schedule) ScheduleResponse {
	resp := ScheduleResponse{
		ID:          s.ID,
		AgendaID:    s.AgendaID,
		PatientID:   s.PatientID,
		Origin:      s.Origin,
		Destination: s.Destination,
		Time:        s.Time,
		Weekdays:    s.Weekdays,
		StartDate:   FormatDate(s.StartDate),
		Active:      s.Active,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.EndDate != nil {
		end := FormatDate(*s.EndDate)
		resp.EndDate = &end
	}
	return resp
}

func NewScheduleResponses(schedules []*Schedule) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, NewScheduleResponse(s))
	}
	return out
}

// StatusResponse is the wire form of a StatusRecord. A synthetic pending state
// (no row written yet) has Seq 0 and no ID.
type StatusResponse struct {
	ID          *uuid.UUID `json:"idHistorico,omitempty"`
	ScheduleID  uuid.UUID  `json:"idTraslado"`
	ServiceDate string     `json:"fechaTraslado"`
	State       State      `json:"estado"`
	Seq         int        `json:"secuencia"`
	ChangedAt   *time.Time `json:"fechaHoraCambio,omitempty"`
	ActorID     string     `json:"idUsuario,omitempty"`
	Reason      string     `json:"motivoCancelacion,omitempty"`
}

func NewStatusResponse(r *StatusRecord) StatusResponse {
	id := r.ID
	changed := r.ChangedAt
	return StatusResponse{
		ID:          &id,
		ScheduleID:  r.ScheduleID,
		ServiceDate: FormatDate(r.ServiceDate),
		State:       r.State,
		Seq:         r.Seq,
		ChangedAt:   &changed,
		ActorID:     r.ActorID,
		Reason:      r.Reason,
	}
}

// PendingStatusResponse describes a day the schedule applies on but for which
// no row exists yet.
func PendingStatusResponse(scheduleID uuid.UUID, date time.Time) StatusResponse {
	return StatusResponse{
		ScheduleID:  scheduleID,
		ServiceDate: FormatDate(date),
		State:       StatePending,
	}
}

func NewStatusResponses(records []*StatusRecord) []StatusResponse {
	out := make([]StatusResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewStatusResponse(r))
	}
	return out
}

// DailyTransfer is one applicable schedule on a date, enriched with its
// current state and directory data.
type DailyTransfer struct {
	ScheduleID         uuid.UUID `json:"idTraslado"`
	AgendaID           uuid.UUID `json:"idAgenda"`
	PatientID          uuid.UUID `json:"idPaciente"`
	PatientName        string    `json:"nombreCompletoPaciente,omitempty"`
	DriverName         string    `json:"nombreCompletoChofer,omitempty"`
	Origin             string    `json:"direccionOrigen"`
	Destination        string    `json:"direccionDestino"`
	Time               ClockTime `json:"horaProgramada"`
	ServiceDate        string    `json:"fecha"`
	State              State     `json:"estadoActual"`
	Seq                int       `json:"secuencia"`
	RequiresWheelchair bool      `json:"sillaRueda"`
	CanStart           bool      `json:"puedeIniciar"`
	CanFinish          bool      `json:"puedeFinalizar"`
	CanCancel          bool      `json:"puedeCancelar"`
}

// NewDailyTransfer projects a schedule and its authoritative record (nil when
// none has been written) for one service date.
func NewDailyTransfer(s *Schedule, date time.Time, current *StatusRecord) DailyTransfer {
	state := StatePending
	seq := 0
	if current != nil {
		state = current.State
		seq = current.Seq
	}
	return DailyTransfer{
		ScheduleID:  s.ID,
		AgendaID:    s.AgendaID,
		PatientID:   s.PatientID,
		Origin:      s.Origin,
		Destination: s.Destination,
		Time:        s.Time,
		ServiceDate: FormatDate(date),
		State:       state,
		Seq:         seq,
		CanStart:    state.CanTransitionTo(StateStarted),
		CanFinish:   state.CanTransitionTo(StateFinished),
		CanCancel:   state.CanTransitionTo(StateCanceled),
	}
}

// DayTransfers groups one day of a weekly listing.
type DayTransfers struct {
	Date      string          `json:"fecha"`
	Weekday   string          `json:"dia"`
	Transfers []DailyTransfer `json:"traslados"`
}

// GenerationRunResponse is the wire form of a GenerationRun.
type GenerationRunResponse struct {
	ServiceDate string    `json:"fecha"`
	Trigger     Trigger   `json:"origen"`
	Applicable  int       `json:"aplicables"`
	Created     int       `json:"creados"`
	Skipped     int       `json:"omitidos"`
	Failed      int       `json:"fallidos"`
	StartedAt   time.Time `json:"inicio"`
	FinishedAt  time.Time `json:"fin"`
}

func NewGenerationRunResponse(r *GenerationRun) GenerationRunResponse {
	return GenerationRunResponse{
		ServiceDate: FormatDate(r.ServiceDate),
		Trigger:     r.Trigger,
		Applicable:  r.Applicable,
		Created:     r.Created,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}
