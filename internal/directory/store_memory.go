package directory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"medtransit/pkg/platform/sentinel"
)

// InMemory is a directory backed by maps, used for tests and database-less runs.
type InMemory struct {
	mu       sync.RWMutex
	agendas  map[uuid.UUID]*Agenda
	patients map[uuid.UUID]*Patient
}

func NewInMemory() *InMemory {
	return &InMemory{
		agendas:  make(map[uuid.UUID]*Agenda),
		patients: make(map[uuid.UUID]*Patient),
	}
}

// PutAgenda inserts or replaces an agenda.
func (s *InMemory) PutAgenda(a *Agenda) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.agendas[a.ID] = &cp
}

// PutPatient inserts or replaces a patient.
func (s *InMemory) PutPatient(p *Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.patients[p.ID] = &cp
}

func (s *InMemory) FindAgenda(_ context.Context, id uuid.UUID) (*Agenda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agendas[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// FindAgendaByDriver returns the agenda driven by driverID, preferring an
// active one when the driver has several.
func (s *InMemory) FindAgendaByDriver(_ context.Context, driverID uuid.UUID) (*Agenda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *Agenda
	for _, a := range s.agendas {
		if a.DriverID != driverID {
			continue
		}
		if found == nil || (a.Active && !found.Active) {
			found = a
		}
	}
	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *InMemory) FindPatient(_ context.Context, id uuid.UUID) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// FindPatients returns the patients that exist among ids, keyed by ID.
func (s *InMemory) FindPatients(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]*Patient, len(ids))
	for _, id := range ids {
		if p, ok := s.patients[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

// FindAgendas returns the agendas that exist among ids, keyed by ID.
func (s *InMemory) FindAgendas(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Agenda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]*Agenda, len(ids))
	for _, id := range ids {
		if a, ok := s.agendas[id]; ok {
			cp := *a
			out[id] = &cp
		}
	}
	return out, nil
}

// Seed is the YAML layout accepted by LoadSeedFile.
type Seed struct {
	Agendas  []Agenda  `yaml:"agendas"`
	Patients []Patient `yaml:"patients"`
}

// LoadSeedFile fills the store from a YAML file. It is how database-less
// deployments get a directory to schedule against.
func (s *InMemory) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read directory seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("decode directory seed: %w", err)
	}
	for i := range seed.Agendas {
		s.PutAgenda(&seed.Agendas[i])
	}
	for i := range seed.Patients {
		s.PutPatient(&seed.Patients[i])
	}
	return nil
}
