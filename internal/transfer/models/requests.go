package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "medtransit/pkg/domain-errors"
)

// ScheduleRequest is the body of POST and PUT /traslados.
type ScheduleRequest struct {
	AgendaID    string   `json:"idAgenda" validate:"required,uuid"`
	PatientID   string   `json:"idPaciente" validate:"required,uuid"`
	Origin      string   `json:"direccionOrigen" validate:"required,max=255"`
	Destination string   `json:"direccionDestino" validate:"required,max=255"`
	Time        string   `json:"horaProgramada" validate:"required,hhmm"`
	Weekdays    Weekdays `json:"diasSemana" validate:"required"`
	StartDate   string   `json:"fechaInicio" validate:"required,isodate"`
	EndDate     string   `json:"fechaFin,omitempty" validate:"omitempty,isodate"`
	Active      *bool    `json:"activo,omitempty"`
	Notes       string   `json:"observaciones,omitempty" validate:"max=1000"`
}

// Fields validates the request and converts it into domain fields.
// A missing "activo" means active.
func (r *ScheduleRequest) Fields() (ScheduleFields, error) {
	if err := validateStruct(r); err != nil {
		return ScheduleFields{}, err
	}
	clock, err := ParseClockTime(r.Time)
	if err != nil {
		return ScheduleFields{}, err
	}
	days, err := NewWeekdays(r.Weekdays)
	if err != nil {
		return ScheduleFields{}, err
	}
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return ScheduleFields{}, err
	}
	var end *time.Time
	if r.EndDate != "" {
		e, err := ParseDate(r.EndDate)
		if err != nil {
			return ScheduleFields{}, err
		}
		if e.Before(start) {
			return ScheduleFields{}, dErrors.New(dErrors.CodeValidation, "fechaFin must not be before fechaInicio")
		}
		end = &e
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return ScheduleFields{
		AgendaID:    uuid.MustParse(r.AgendaID),
		PatientID:   uuid.MustParse(r.PatientID),
		Origin:      r.Origin,
		Destination: r.Destination,
		Time:        clock,
		Weekdays:    days,
		StartDate:   start,
		EndDate:     end,
		Active:      active,
		Notes:       r.Notes,
	}, nil
}

// TransitionRequest is the optional body of POST /traslados/{id}/iniciar|finalizar.
type TransitionRequest struct {
	ActorID string `json:"usuarioId,omitempty" validate:"max=128"`
	Date    string `json:"fecha,omitempty" validate:"omitempty,isodate"`
}

func (r *TransitionRequest) Validate() error {
	return validateStruct(r)
}

// CancelRequest is the body of POST /traslados/{id}/cancelar.
type CancelRequest struct {
	Reason  string `json:"motivo" validate:"required,max=500"`
	ActorID string `json:"usuarioId,omitempty" validate:"max=128"`
	Date    string `json:"fecha,omitempty" validate:"omitempty,isodate"`
}

func (r *CancelRequest) Validate() error {
	return validateStruct(r)
}

// ScheduleFilter narrows GET /traslados.
type ScheduleFilter struct {
	AgendaID  *uuid.UUID
	PatientID *uuid.UUID
	Active    *bool
}

// Matches reports whether s passes every set criterion.
func (f ScheduleFilter) Matches(s *Schedule) bool {
	if f.AgendaID != nil && s.AgendaID != *f.AgendaID {
		return false
	}
	if f.PatientID != nil && s.PatientID != *f.PatientID {
		return false
	}
	if f.Active != nil && s.Active != *f.Active {
		return false
	}
	return true
}
