package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medtransit/pkg/domain-errors"
)

func date(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func validFields() ScheduleFields {
	return ScheduleFields{
		AgendaID:    uuid.New(),
		PatientID:   uuid.New(),
		Origin:      "Av. Colón 1200",
		Destination: "Hospital Privado",
		Time:        MustClockTime("08:30"),
		Weekdays:    Weekdays{1, 3, 5},
		StartDate:   date("2024-01-01"),
		Active:      true,
	}
}

func TestNewSchedule(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid fields", func(t *testing.T) {
		s, err := NewSchedule(uuid.New(), validFields(), now)
		require.NoError(t, err)
		assert.True(t, s.Active)
		assert.Equal(t, now, s.CreatedAt)
		assert.Equal(t, now, s.UpdatedAt)
	})

	t.Run("end before start", func(t *testing.T) {
		f := validFields()
		f.EndDate = datePtr("2023-12-31")
		_, err := NewSchedule(uuid.New(), f, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("end equal to start is allowed", func(t *testing.T) {
		f := validFields()
		f.EndDate = datePtr("2024-01-01")
		_, err := NewSchedule(uuid.New(), f, now)
		assert.NoError(t, err)
	})

	t.Run("empty weekday set", func(t *testing.T) {
		f := validFields()
		f.Weekdays = nil
		_, err := NewSchedule(uuid.New(), f, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("apply leaves the schedule untouched on error", func(t *testing.T) {
		s, err := NewSchedule(uuid.New(), validFields(), now)
		require.NoError(t, err)
		bad := validFields()
		bad.Origin = " "
		require.Error(t, s.Apply(bad, now.Add(time.Hour)))
		assert.Equal(t, "Av. Colón 1200", s.Origin)
		assert.Equal(t, now, s.UpdatedAt)
	})
}

func TestOverlapsDates(t *testing.T) {
	cases := []struct {
		name    string
		a, b    Schedule
		overlap bool
	}{
		{"both open", Schedule{StartDate: date("2024-01-01")}, Schedule{StartDate: date("2030-01-01")}, true},
		{"a ends before b starts", Schedule{StartDate: date("2024-01-01"), EndDate: datePtr("2024-01-31")}, Schedule{StartDate: date("2024-02-01")}, false},
		{"touching on one day", Schedule{StartDate: date("2024-01-01"), EndDate: datePtr("2024-02-01")}, Schedule{StartDate: date("2024-02-01")}, true},
		{"b ends before a starts", Schedule{StartDate: date("2024-03-01")}, Schedule{StartDate: date("2024-01-01"), EndDate: datePtr("2024-02-28")}, false},
		{"nested", Schedule{StartDate: date("2024-01-01"), EndDate: datePtr("2024-12-31")}, Schedule{StartDate: date("2024-06-01"), EndDate: datePtr("2024-06-30")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, tc.a.OverlapsDates(&tc.b))
			assert.Equal(t, tc.overlap, tc.b.OverlapsDates(&tc.a))
		})
	}
}

func TestScheduleRequestFields(t *testing.T) {
	base := func() ScheduleRequest {
		return ScheduleRequest{
			AgendaID:    uuid.NewString(),
			PatientID:   uuid.NewString(),
			Origin:      "Bv. San Juan 500",
			Destination: "Clínica Reina Fabiola",
			Time:        "07:45",
			Weekdays:    Weekdays{2, 4},
			StartDate:   "2024-02-01",
		}
	}

	t.Run("defaults to active", func(t *testing.T) {
		req := base()
		f, err := req.Fields()
		require.NoError(t, err)
		assert.True(t, f.Active)
		assert.Equal(t, MustClockTime("07:45"), f.Time)
		assert.Nil(t, f.EndDate)
	})

	t.Run("rejects bad time", func(t *testing.T) {
		req := base()
		req.Time = "25:00"
		_, err := req.Fields()
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "horaProgramada")
	})

	t.Run("rejects end before start", func(t *testing.T) {
		req := base()
		req.EndDate = "2024-01-31"
		_, err := req.Fields()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects missing weekdays", func(t *testing.T) {
		req := base()
		req.Weekdays = nil
		_, err := req.Fields()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects bad agenda id", func(t *testing.T) {
		req := base()
		req.AgendaID = "42"
		_, err := req.Fields()
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "idAgenda")
	})

	t.Run("decodes weekdays from the legacy string form", func(t *testing.T) {
		var req ScheduleRequest
		body := `{"idAgenda":"` + uuid.NewString() + `","idPaciente":"` + uuid.NewString() + `",
			"direccionOrigen":"a","direccionDestino":"b","horaProgramada":"10:00",
			"diasSemana":"5,1,3","fechaInicio":"2024-01-01","activo":false}`
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		f, err := req.Fields()
		require.NoError(t, err)
		assert.Equal(t, Weekdays{1, 3, 5}, f.Weekdays)
		assert.False(t, f.Active)
	})
}
