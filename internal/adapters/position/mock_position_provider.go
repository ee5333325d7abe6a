package position

import (
	"context"
	"location-capture-service/internal/domain"
	"sync"
	"sync/atomic"
)

// MockPositionProvider returns scripted results. When Block is non-nil,
// SampleCurrentPosition waits on it (or ctx) before answering.
type MockPositionProvider struct {
	Status        domain.PermissionStatus
	PermissionErr error
	Fix           domain.Coordinates
	SampleErr     error
	Block         chan struct{}

	// Sampling is closed when the first sample starts.
	Sampling chan struct{}

	once            sync.Once
	permissionCalls atomic.Int32
	sampleCalls     atomic.Int32
}

func NewMockPositionProvider(status domain.PermissionStatus, fix domain.Coordinates) *MockPositionProvider {
	return &MockPositionProvider{
		Status:   status,
		Fix:      fix,
		Sampling: make(chan struct{}),
	}
}

func (m *MockPositionProvider) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	m.permissionCalls.Add(1)
	if m.PermissionErr != nil {
		return "", m.PermissionErr
	}
	return m.Status, nil
}

func (m *MockPositionProvider) SampleCurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	m.sampleCalls.Add(1)
	if m.Sampling != nil {
		m.once.Do(func() { close(m.Sampling) })
	}

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return domain.Coordinates{}, ctx.Err()
		}
	}

	if m.SampleErr != nil {
		return domain.Coordinates{}, m.SampleErr
	}
	return m.Fix, nil
}

func (m *MockPositionProvider) PermissionCalls() int { return int(m.permissionCalls.Load()) }

func (m *MockPositionProvider) SampleCalls() int { return int(m.sampleCalls.Load()) }
