package repositories

import (
	"context"
	"fmt"
	"location-capture-service/internal/domain"
	"sync"
)

// MemoryLocationRepository is a transient, process-local LocationStore.
// It backs a degraded session when the database file cannot be used;
// nothing written to it survives a restart.
type MemoryLocationRepository struct {
	mu      sync.RWMutex
	records []domain.LocationRecord
	nextID  int64
}

func NewMemoryLocationRepository() *MemoryLocationRepository {
	return &MemoryLocationRepository{nextID: 1}
}

func (m *MemoryLocationRepository) EnsureSchema(ctx context.Context) error {
	return nil
}

func (m *MemoryLocationRepository) Insert(ctx context.Context, latitude, longitude float64) (int64, error) {
	if err := (domain.Coordinates{Lat: latitude, Lon: longitude}).Validate(); err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.records = append(m.records, domain.LocationRecord{ID: id, Latitude: latitude, Longitude: longitude})
	return id, nil
}

// Records are appended with increasing ids, so slice order is id order.
func (m *MemoryLocationRepository) ListAll(ctx context.Context) ([]domain.LocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.LocationRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryLocationRepository) Close() error {
	return nil
}
