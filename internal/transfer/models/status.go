package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "medtransit/pkg/domain-errors"
)

// State is the per-day lifecycle state of a transfer.
type State string

const (
	StatePending  State = "PENDING"
	StateStarted  State = "STARTED"
	StateFinished State = "FINISHED"
	StateCanceled State = "CANCELED"
)

// AllStates lists every state in lifecycle order.
var AllStates = []State{StatePending, StateStarted, StateFinished, StateCanceled}

var transitions = map[State]map[State]bool{
	StatePending: {StateStarted: true, StateCanceled: true},
	StateStarted: {StateFinished: true, StateCanceled: true},
}

var stateAliases = map[string]State{
	"PENDING":    StatePending,
	"PENDIENTE":  StatePending,
	"STARTED":    StateStarted,
	"INICIADO":   StateStarted,
	"FINISHED":   StateFinished,
	"FINALIZADO": StateFinished,
	"CANCELED":   StateCanceled,
	"CANCELLED":  StateCanceled,
	"CANCELADO":  StateCanceled,
}

// ParseState accepts the canonical names and the legacy Spanish ones, in any case.
func ParseState(s string) (State, error) {
	if st, ok := stateAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown state "+s)
}

func (s State) IsValid() bool {
	switch s {
	case StatePending, StateStarted, StateFinished, StateCanceled:
		return true
	}
	return false
}

// CanTransitionTo is the complete transition table; every pair not listed is illegal.
func (s State) CanTransitionTo(next State) bool {
	return transitions[s][next]
}

func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateCanceled
}

// SystemActor is the identity recorded on rows written by the generator.
const SystemActor = "system"

// StatusRecord is one append-only state row for a schedule on a service date.
// Within (ScheduleID, ServiceDate) the row with the highest Seq is authoritative.
type StatusRecord struct {
	ID          uuid.UUID
	ScheduleID  uuid.UUID
	ServiceDate time.Time
	Seq         int
	State       State
	ChangedAt   time.Time
	ActorID     string
	Reason      string
}

// NewPendingRecord is the first row for a (schedule, date) pair.
func NewPendingRecord(scheduleID uuid.UUID, date, at time.Time) *StatusRecord {
	return &StatusRecord{
		ID:          uuid.New(),
		ScheduleID:  scheduleID,
		ServiceDate: date,
		Seq:         1,
		State:       StatePending,
		ChangedAt:   at,
		ActorID:     SystemActor,
	}
}

// Next builds the row that moves r to state next.
func (r *StatusRecord) Next(next State, actor, reason string, at time.Time) (*StatusRecord, error) {
	if !r.State.CanTransitionTo(next) {
		return nil, dErrors.New(dErrors.CodeInvalidState,
			"cannot move transfer from "+string(r.State)+" to "+string(next))
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "acting user is required")
	}
	reason = strings.TrimSpace(reason)
	if next == StateCanceled && reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "cancellation reason is required")
	}
	if next != StateCanceled {
		reason = ""
	}
	return &StatusRecord{
		ID:          uuid.New(),
		ScheduleID:  r.ScheduleID,
		ServiceDate: r.ServiceDate,
		Seq:         r.Seq + 1,
		State:       next,
		ChangedAt:   at,
		ActorID:     actor,
		Reason:      reason,
	}, nil
}

// Authoritative returns the row with the highest Seq, or nil.
func Authoritative(records []*StatusRecord) *StatusRecord {
	var latest *StatusRecord
	for _, r := range records {
		if latest == nil || r.Seq > latest.Seq {
			latest = r
		}
	}
	return latest
}
