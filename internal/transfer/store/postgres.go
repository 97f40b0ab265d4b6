package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"medtransit/internal/transfer/models"
	"medtransit/pkg/platform/sentinel"
	"medtransit/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Postgres persists schedules and status rows. Every method runs on the
// transaction carried by ctx (see pkg/platform/tx) when there is one.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) q(ctx context.Context) tx.Execer {
	return tx.ExecerFrom(ctx, s.db)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const scheduleColumns = `id, agenda_id, patient_id, origin, destination,
	to_char(start_time, 'HH24:MI'), weekdays, start_date, end_date,
	active, notes, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row scanner) (*models.Schedule, error) {
	var (
		s    models.Schedule
		days pq.Int64Array
		end  sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.AgendaID, &s.PatientID, &s.Origin, &s.Destination,
		&s.Time, &days, &s.StartDate, &end, &s.Active, &s.Notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	ints := make([]int, len(days))
	for i, d := range days {
		ints[i] = int(d)
	}
	wd, err := models.NewWeekdays(ints)
	if err != nil {
		return nil, fmt.Errorf("schedule %s has invalid weekdays: %w", s.ID, err)
	}
	s.Weekdays = wd
	s.StartDate = models.DateOf(s.StartDate, time.UTC)
	if end.Valid {
		e := models.DateOf(end.Time, time.UTC)
		s.EndDate = &e
	}
	return &s, nil
}

func weekdayArray(w models.Weekdays) any {
	out := make([]int64, len(w))
	for i, d := range w {
		out[i] = int64(d)
	}
	return pq.Array(out)
}

func nullableDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return models.FormatDate(*d)
}

func (s *Postgres) CreateSchedule(ctx context.Context, sch *models.Schedule) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO schedules (id, agenda_id, patient_id, origin, destination, start_time,
			weekdays, start_date, end_date, active, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::time, $7, $8::date, $9::date, $10, $11, $12, $13)`,
		sch.ID, sch.AgendaID, sch.PatientID, sch.Origin, sch.Destination, sch.Time,
		weekdayArray(sch.Weekdays), models.FormatDate(sch.StartDate), nullableDate(sch.EndDate),
		sch.Active, sch.Notes, sch.CreatedAt, sch.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateSchedule(ctx context.Context, sch *models.Schedule) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE schedules SET agenda_id = $2, patient_id = $3, origin = $4, destination = $5,
			start_time = $6::time, weekdays = $7, start_date = $8::date, end_date = $9::date,
			active = $10, notes = $11, updated_at = $12
		WHERE id = $1`,
		sch.ID, sch.AgendaID, sch.PatientID, sch.Origin, sch.Destination, sch.Time,
		weekdayArray(sch.Weekdays), models.FormatDate(sch.StartDate), nullableDate(sch.EndDate),
		sch.Active, sch.Notes, sch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	sch, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return sch, nil
}

func (s *Postgres) ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error) {
	var (
		conds []string
		args  []any
	)
	if filter.AgendaID != nil {
		args = append(args, *filter.AgendaID)
		conds = append(conds, "agenda_id = $"+strconv.Itoa(len(args)))
	}
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		conds = append(conds, "patient_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, "active = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_time, created_at, id`

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*models.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return out, nil
}

func (s *Postgres) ListActiveSchedules(ctx context.Context) ([]*models.Schedule, error) {
	active := true
	return s.ListSchedules(ctx, models.ScheduleFilter{Active: &active})
}

func (s *Postgres) ListActiveByAgenda(ctx context.Context, agendaID uuid.UUID) ([]*models.Schedule, error) {
	active := true
	return s.ListSchedules(ctx, models.ScheduleFilter{AgendaID: &agendaID, Active: &active})
}

func (s *Postgres) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*models.Schedule, error) {
	active := true
	return s.ListSchedules(ctx, models.ScheduleFilter{PatientID: &patientID, Active: &active})
}

// LockScheduling takes transaction-scoped advisory locks on the given keys
// (agenda and patient IDs) so concurrent conflict checks on them serialise.
// Keys are locked in a stable order.
func (s *Postgres) LockScheduling(ctx context.Context, keys ...uuid.UUID) error {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	sorted = slices.Compact(sorted)
	for _, k := range sorted {
		if _, err := s.q(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, k.String()); err != nil {
			return fmt.Errorf("lock scheduling key %s: %w", k, err)
		}
	}
	return nil
}

const recordColumns = `id, schedule_id, service_date, seq, state, changed_at, actor_id, COALESCE(reason, '')`

func scanRecord(row scanner) (*models.StatusRecord, error) {
	var (
		r     models.StatusRecord
		state string
	)
	if err := row.Scan(&r.ID, &r.ScheduleID, &r.ServiceDate, &r.Seq, &state, &r.ChangedAt, &r.ActorID, &r.Reason); err != nil {
		return nil, err
	}
	r.State = models.State(state)
	r.ServiceDate = models.DateOf(r.ServiceDate, time.UTC)
	return &r, nil
}

func nullableReason(reason string) any {
	if reason == "" {
		return nil
	}
	return reason
}

func (s *Postgres) LatestRecord(ctx context.Context, scheduleID uuid.UUID, date time.Time) (*models.StatusRecord, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM status_records
		WHERE schedule_id = $1 AND service_date = $2::date
		ORDER BY seq DESC LIMIT 1`, scheduleID, models.FormatDate(date))
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("latest status record: %w", err)
	}
	return r, nil
}

func (s *Postgres) ListRecords(ctx context.Context, scheduleID uuid.UUID, date time.Time) ([]*models.StatusRecord, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+recordColumns+` FROM status_records
		WHERE schedule_id = $1 AND service_date = $2::date
		ORDER BY seq`, scheduleID, models.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("list status records: %w", err)
	}
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]*models.StatusRecord, error) {
	defer rows.Close()
	var out []*models.StatusRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan status record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status records: %w", err)
	}
	return out, nil
}

func (s *Postgres) InsertFirstRecord(ctx context.Context, rec *models.StatusRecord) (bool, error) {
	if rec.Seq != 1 {
		return false, sentinel.ErrInvalidState
	}
	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO status_records (id, schedule_id, service_date, seq, state, changed_at, actor_id, reason)
		VALUES ($1, $2, $3::date, 1, $4, $5, $6, $7)
		ON CONFLICT (schedule_id, service_date, seq) DO NOTHING`,
		rec.ID, rec.ScheduleID, models.FormatDate(rec.ServiceDate), string(rec.State),
		rec.ChangedAt, rec.ActorID, nullableReason(rec.Reason))
	if err != nil {
		return false, fmt.Errorf("insert first status record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert first status record: %w", err)
	}
	return n == 1, nil
}

// AppendRecord inserts rec only if its Seq directly follows the stored maximum;
// otherwise (or on a unique-key race) it returns sentinel.ErrConflict.
func (s *Postgres) AppendRecord(ctx context.Context, rec *models.StatusRecord) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO status_records (id, schedule_id, service_date, seq, state, changed_at, actor_id, reason)
		SELECT $1, $2, $3::date, $4, $5, $6, $7, $8
		WHERE COALESCE((SELECT MAX(seq) FROM status_records
			WHERE schedule_id = $2 AND service_date = $3::date), 0) = $4 - 1`,
		rec.ID, rec.ScheduleID, models.FormatDate(rec.ServiceDate), rec.Seq, string(rec.State),
		rec.ChangedAt, rec.ActorID, nullableReason(rec.Reason))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append status record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append status record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) LatestRecordsInRange(ctx context.Context, from, to time.Time, scheduleIDs []uuid.UUID) ([]*models.StatusRecord, error) {
	args := []any{models.FormatDate(from), models.FormatDate(to)}
	filter := ""
	if scheduleIDs != nil {
		ids := make([]string, len(scheduleIDs))
		for i, id := range scheduleIDs {
			ids[i] = id.String()
		}
		args = append(args, pq.Array(ids))
		filter = ` AND schedule_id = ANY($3::uuid[])`
	}
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+recordColumns+` FROM (
			SELECT DISTINCT ON (schedule_id, service_date) *
			FROM status_records
			WHERE service_date BETWEEN $1::date AND $2::date`+filter+`
			ORDER BY schedule_id, service_date, seq DESC
		) latest
		ORDER BY service_date, schedule_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("latest status records in range: %w", err)
	}
	return collectRecords(rows)
}

func (s *Postgres) FindRun(ctx context.Context, date time.Time) (*models.GenerationRun, error) {
	var (
		run     models.GenerationRun
		trigger string
	)
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT service_date, run_trigger, started_at, finished_at, applicable, created, skipped, failed
		FROM generation_runs WHERE service_date = $1::date`, models.FormatDate(date)).
		Scan(&run.ServiceDate, &trigger, &run.StartedAt, &run.FinishedAt,
			&run.Applicable, &run.Created, &run.Skipped, &run.Failed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find generation run: %w", err)
	}
	run.Trigger = models.Trigger(trigger)
	run.ServiceDate = models.DateOf(run.ServiceDate, time.UTC)
	return &run, nil
}

func (s *Postgres) SaveRun(ctx context.Context, run *models.GenerationRun) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO generation_runs (service_date, run_trigger, started_at, finished_at, applicable, created, skipped, failed)
		VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (service_date) DO UPDATE SET
			run_trigger = EXCLUDED.run_trigger,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			applicable = EXCLUDED.applicable,
			created = EXCLUDED.created,
			skipped = EXCLUDED.skipped,
			failed = EXCLUDED.failed`,
		models.FormatDate(run.ServiceDate), string(run.Trigger), run.StartedAt, run.FinishedAt,
		run.Applicable, run.Created, run.Skipped, run.Failed)
	if err != nil {
		return fmt.Errorf("save generation run: %w", err)
	}
	return nil
}
