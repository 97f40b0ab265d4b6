// Package conflict rejects schedules that would double-book a driver agenda or
// a patient.
package conflict

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
)

// ScheduleFinder lists the active schedules a candidate must be compared with.
type ScheduleFinder interface {
	ListActiveByAgenda(ctx context.Context, agendaID uuid.UUID) ([]*models.Schedule, error)
	ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*models.Schedule, error)
}

// Detector runs the agenda and patient checks against a ScheduleFinder.
// It holds no state; construct one per transaction when the finder is transactional.
type Detector struct {
	schedules ScheduleFinder
}

// New returns a Detector reading existing schedules from schedules.
func New(schedules ScheduleFinder) *Detector {
	return &Detector{schedules: schedules}
}

// Check fails with a conflict error when candidate overlaps another active
// schedule. excludeID (the schedule being updated) is never compared.
// Inactive candidates produce no transfers and are not checked.
func (d *Detector) Check(ctx context.Context, candidate *models.Schedule, excludeID uuid.UUID) error {
	if !candidate.Active {
		return nil
	}
	if _, err := models.NewWeekdays(candidate.Weekdays); err != nil {
		return err
	}

	onAgenda, err := d.schedules.ListActiveByAgenda(ctx, candidate.AgendaID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agenda schedules")
	}
	for _, other := range onAgenda {
		if other.ID == excludeID || other.ID == candidate.ID {
			continue
		}
		if day, ok := AgendaClash(candidate, other); ok {
			return dErrors.New(dErrors.CodeConflict, fmt.Sprintf(
				"agenda already has transfer %s at %s on %s in an overlapping date range",
				other.ID, other.Time, models.WeekdayName(day)))
		}
	}

	forPatient, err := d.schedules.ListActiveByPatient(ctx, candidate.PatientID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load patient schedules")
	}
	for _, other := range forPatient {
		if other.ID == excludeID || other.ID == candidate.ID {
			continue
		}
		if day, ok := PatientClash(candidate, other); ok {
			return dErrors.New(dErrors.CodeConflict, fmt.Sprintf(
				"patient already has transfer %s at %s on %s",
				other.ID, other.Time, models.WeekdayName(day)))
		}
	}
	return nil
}

// AgendaClash reports the first shared weekday when a and b, on the same
// agenda, share time and weekday and their date windows overlap.
func AgendaClash(a, b *models.Schedule) (int, bool) {
	if !b.Active || a.Time != b.Time || !a.OverlapsDates(b) {
		return 0, false
	}
	return a.Weekdays.FirstCommon(b.Weekdays)
}

// PatientClash reports the first shared weekday when a and b, for the same
// patient, share time and weekday. Date windows are ignored.
func PatientClash(a, b *models.Schedule) (int, bool) {
	if !b.Active || a.Time != b.Time {
		return 0, false
	}
	return a.Weekdays.FirstCommon(b.Weekdays)
}
