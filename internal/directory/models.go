// Package directory exposes the agendas (driver calendars) and patients that
// schedules reference. Both are owned by the CRUD layer; this package only reads them.
package directory

import "github.com/google/uuid"

// Agenda is the scheduling calendar of one driver.
type Agenda struct {
	ID           uuid.UUID `yaml:"id"`
	DriverID     uuid.UUID `yaml:"driver_id"`
	DriverName   string    `yaml:"driver_name"`
	Active       bool      `yaml:"active"`
	NotifyChatID string    `yaml:"notify_chat_id"`
}

// Patient is the subset of patient data dispatch decisions depend on.
type Patient struct {
	ID                 uuid.UUID `yaml:"id"`
	Name               string    `yaml:"name"`
	RequiresWheelchair bool      `yaml:"requires_wheelchair"`
	Active             bool      `yaml:"active"`
}
