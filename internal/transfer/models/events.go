package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatusChanged is the type of the event emitted after every committed transition.
const EventStatusChanged = "transfer.status.changed"

// StatusChangedEvent is published after a transition commits.
type StatusChangedEvent struct {
	Type        string    `json:"type"`
	ScheduleID  uuid.UUID `json:"schedule_id"`
	AgendaID    uuid.UUID `json:"agenda_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	ServiceDate string    `json:"service_date"`
	Seq         int       `json:"seq"`
	From        State     `json:"from"`
	To          State     `json:"to"`
	ActorID     string    `json:"actor_id"`
	Reason      string    `json:"reason,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}

func NewStatusChangedEvent(s *Schedule, from State, rec *StatusRecord) StatusChangedEvent {
	return StatusChangedEvent{
		Type:        EventStatusChanged,
		ScheduleID:  rec.ScheduleID,
		AgendaID:    s.AgendaID,
		PatientID:   s.PatientID,
		ServiceDate: FormatDate(rec.ServiceDate),
		Seq:         rec.Seq,
		From:        from,
		To:          rec.State,
		ActorID:     rec.ActorID,
		Reason:      rec.Reason,
		ChangedAt:   rec.ChangedAt,
	}
}

// Key partitions events per schedule and day so consumers see them in order.
func (e StatusChangedEvent) Key() string {
	return e.ScheduleID.String() + "/" + e.ServiceDate
}
