// Package store persists schedules, their append-only status rows and the
// per-date generation markers.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"medtransit/internal/transfer/models"
	"medtransit/pkg/platform/sentinel"
)

type recordKey struct {
	scheduleID uuid.UUID
	date       string
}

func keyOf(scheduleID uuid.UUID, date time.Time) recordKey {
	return recordKey{scheduleID: scheduleID, date: models.FormatDate(date)}
}

// InMemory keeps everything in maps guarded by one RWMutex. Values are copied
// on the way in and out so callers never share state with the store.
type InMemory struct {
	mu        sync.RWMutex
	schedules map[uuid.UUID]*models.Schedule
	records   map[recordKey][]*models.StatusRecord
	runs      map[string]*models.GenerationRun
}

func NewInMemory() *InMemory {
	return &InMemory{
		schedules: make(map[uuid.UUID]*models.Schedule),
		records:   make(map[recordKey][]*models.StatusRecord),
		runs:      make(map[string]*models.GenerationRun),
	}
}

func copySchedule(s *models.Schedule) *models.Schedule {
	cp := *s
	cp.Weekdays = slices.Clone(s.Weekdays)
	if s.EndDate != nil {
		end := *s.EndDate
		cp.EndDate = &end
	}
	return &cp
}

func copyRecord(r *models.StatusRecord) *models.StatusRecord {
	cp := *r
	return &cp
}

func (s *InMemory) CreateSchedule(_ context.Context, sch *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[sch.ID]; exists {
		return sentinel.ErrConflict
	}
	s.schedules[sch.ID] = copySchedule(sch)
	return nil
}

func (s *InMemory) UpdateSchedule(_ context.Context, sch *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[sch.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.schedules[sch.ID] = copySchedule(sch)
	return nil
}

func (s *InMemory) FindSchedule(_ context.Context, id uuid.UUID) (*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sch, ok := s.schedules[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copySchedule(sch), nil
}

// ListSchedules returns matching schedules ordered by time of day, then creation.
func (s *InMemory) ListSchedules(_ context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Schedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		if filter.Matches(sch) {
			out = append(out, copySchedule(sch))
		}
	}
	slices.SortFunc(out, compareSchedules)
	return out, nil
}

func compareSchedules(a, b *models.Schedule) int {
	if a.Time != b.Time {
		return int(a.Time) - int(b.Time)
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return slices.Compare(a.ID[:], b.ID[:])
}

func (s *InMemory) ListActiveSchedules(ctx context.Context) ([]*models.Schedule, error) {
	active := true
	return s.ListSchedules(ctx, models.ScheduleFilter{Active: &active})
}

func (s *InMemory) ListActiveByAgenda(ctx context.Context, agendaID uuid.UUID) ([]*models.Schedule, error) {
	active := true
	return s.ListSchedules(ctx, models.ScheduleFilter{AgendaID: &agendaID, Active: &active})
}

func (s *InMemory) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*models.Schedule, error) {
	active := true
	return s.ListSchedules(ctx, models.ScheduleFilter{PatientID: &patientID, Active: &active})
}

// LockScheduling is a no-op: the sharded transaction already serialises
// schedule writers in memory.
func (s *InMemory) LockScheduling(_ context.Context, _ ...uuid.UUID) error {
	return nil
}

func (s *InMemory) LatestRecord(_ context.Context, scheduleID uuid.UUID, date time.Time) (*models.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := models.Authoritative(s.records[keyOf(scheduleID, date)])
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return copyRecord(latest), nil
}

func (s *InMemory) ListRecords(_ context.Context, scheduleID uuid.UUID, date time.Time) ([]*models.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.records[keyOf(scheduleID, date)]
	out := make([]*models.StatusRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyRecord(r))
	}
	slices.SortFunc(out, func(a, b *models.StatusRecord) int { return a.Seq - b.Seq })
	return out, nil
}

// InsertFirstRecord stores rec (which must have Seq 1) only when the pair has
// no rows yet. created is false when another row already exists.
func (s *InMemory) InsertFirstRecord(_ context.Context, rec *models.StatusRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Seq != 1 {
		return false, sentinel.ErrInvalidState
	}
	k := keyOf(rec.ScheduleID, rec.ServiceDate)
	if len(s.records[k]) > 0 {
		return false, nil
	}
	s.records[k] = append(s.records[k], copyRecord(rec))
	return true, nil
}

// AppendRecord stores rec, whose Seq must directly follow the current latest row.
// A stale Seq (lost race) is reported as sentinel.ErrConflict.
func (s *InMemory) AppendRecord(_ context.Context, rec *models.StatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(rec.ScheduleID, rec.ServiceDate)
	latestSeq := 0
	if latest := models.Authoritative(s.records[k]); latest != nil {
		latestSeq = latest.Seq
	}
	if rec.Seq != latestSeq+1 {
		return sentinel.ErrConflict
	}
	s.records[k] = append(s.records[k], copyRecord(rec))
	return nil
}

// LatestRecordsInRange returns the authoritative row of every (schedule, date)
// pair with a date in [from, to]. A nil scheduleIDs means every schedule.
func (s *InMemory) LatestRecordsInRange(_ context.Context, from, to time.Time, scheduleIDs []uuid.UUID) ([]*models.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo, hi := models.FormatDate(from), models.FormatDate(to)
	var out []*models.StatusRecord
	for k, rows := range s.records {
		if k.date < lo || k.date > hi {
			continue
		}
		if scheduleIDs != nil && !slices.Contains(scheduleIDs, k.scheduleID) {
			continue
		}
		if latest := models.Authoritative(rows); latest != nil {
			out = append(out, copyRecord(latest))
		}
	}
	slices.SortFunc(out, func(a, b *models.StatusRecord) int {
		if c := a.ServiceDate.Compare(b.ServiceDate); c != 0 {
			return c
		}
		return slices.Compare(a.ScheduleID[:], b.ScheduleID[:])
	})
	return out, nil
}

func (s *InMemory) FindRun(_ context.Context, date time.Time) (*models.GenerationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[models.FormatDate(date)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

// SaveRun records (or replaces) the marker for run.ServiceDate.
func (s *InMemory) SaveRun(_ context.Context, run *models.GenerationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs[models.FormatDate(run.ServiceDate)] = &cp
	return nil
}
