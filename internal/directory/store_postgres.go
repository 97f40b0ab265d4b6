package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medtransit/pkg/platform/sentinel"
	"medtransit/pkg/platform/tx"
)

// PostgresStore reads agendas and patients from the CRUD layer's tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const agendaColumns = `a.id, a.driver_id, a.driver_name, a.active, COALESCE(a.notify_chat_id, '')`

const patientColumns = `id, full_name, requires_wheelchair, active`

func (s *PostgresStore) FindAgenda(ctx context.Context, id uuid.UUID) (*Agenda, error) {
	row := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+agendaColumns+` FROM agendas a WHERE a.id = $1`, id)
	a, err := scanAgenda(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find agenda: %w", err)
	}
	return a, nil
}

// FindAgendaByDriver returns the agenda driven by driverID, preferring an
// active one when the driver has several.
func (s *PostgresStore) FindAgendaByDriver(ctx context.Context, driverID uuid.UUID) (*Agenda, error) {
	row := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+agendaColumns+` FROM agendas a WHERE a.driver_id = $1 ORDER BY a.active DESC, a.id LIMIT 1`, driverID)
	a, err := scanAgenda(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find agenda by driver: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindAgendas(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Agenda, error) {
	out := make(map[uuid.UUID]*Agenda, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+agendaColumns+` FROM agendas a WHERE a.id = ANY($1::uuid[])`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("find agendas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAgenda(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agenda: %w", err)
		}
		out[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agendas: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindPatients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error) {
	out := make(map[uuid.UUID]*Patient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = ANY($1::uuid[])`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("find patients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAgenda(row scanner) (*Agenda, error) {
	var a Agenda
	if err := row.Scan(&a.ID, &a.DriverID, &a.DriverName, &a.Active, &a.NotifyChatID); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanPatient(row scanner) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.RequiresWheelchair, &p.Active); err != nil {
		return nil, err
	}
	return &p, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
