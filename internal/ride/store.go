package ride

import (
	"errors"
	"sync"

	"github.com/example/ride-booking/internal/models"
)

// ErrRideNotFound is returned by lookups and targeted updates when no
// record matches.
var ErrRideNotFound = errors.New("ride not found")

// Store defines persistence for ride records. Records are append-only;
// mutators may change status, feedback and rating but never identity.
type Store interface {
	Append(r *models.RideRecord) error
	ListAll() ([]models.RideRecord, error)
	UpdateLatest(mutate func(*models.RideRecord)) error
	UpdateByID(id string, mutate func(*models.RideRecord)) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	rides []models.RideRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(r *models.RideRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = append(m.rides, *r)
	return nil
}

func (m *MemoryStore) ListAll() ([]models.RideRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.RideRecord, len(m.rides))
	copy(out, m.rides)
	return out, nil
}

func (m *MemoryStore) UpdateLatest(mutate func(*models.RideRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rides) == 0 {
		return ErrRideNotFound
	}
	mutate(&m.rides[len(m.rides)-1])
	return nil
}

func (m *MemoryStore) UpdateByID(id string, mutate func(*models.RideRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rides {
		if m.rides[i].ID == id {
			mutate(&m.rides[i])
			return nil
		}
	}
	return ErrRideNotFound
}
