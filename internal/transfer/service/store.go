package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medtransit/internal/directory"
	"medtransit/internal/transfer/models"
)

type ScheduleStore interface {
	CreateSchedule(ctx context.Context, s *models.Schedule) error
	UpdateSchedule(ctx context.Context, s *models.Schedule) error
	FindSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error)
	ListActiveSchedules(ctx context.Context) ([]*models.Schedule, error)
	ListActiveByAgenda(ctx context.Context, agendaID uuid.UUID) ([]*models.Schedule, error)
	ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*models.Schedule, error)
	LockScheduling(ctx context.Context, keys ...uuid.UUID) error
}

type RecordStore interface {
	LatestRecord(ctx context.Context, scheduleID uuid.UUID, date time.Time) (*models.StatusRecord, error)
	ListRecords(ctx context.Context, scheduleID uuid.UUID, date time.Time) ([]*models.StatusRecord, error)
	InsertFirstRecord(ctx context.Context, rec *models.StatusRecord) (bool, error)
	AppendRecord(ctx context.Context, rec *models.StatusRecord) error
	LatestRecordsInRange(ctx context.Context, from, to time.Time, scheduleIDs []uuid.UUID) ([]*models.StatusRecord, error)
}

type Store interface {
	ScheduleStore
	RecordStore
}

// Directory resolves the agendas and patients schedules point at.
type Directory interface {
	FindAgenda(ctx context.Context, id uuid.UUID) (*directory.Agenda, error)
	FindAgendaByDriver(ctx context.Context, driverID uuid.UUID) (*directory.Agenda, error)
	FindPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error)
	FindAgendas(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*directory.Agenda, error)
	FindPatients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*directory.Patient, error)
}
