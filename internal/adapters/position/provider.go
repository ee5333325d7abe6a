package position

import (
	"context"
	"errors"
	"fmt"
	"location-capture-service/internal/domain"
)

// PermissionGate answers a one-shot foreground location permission request.
type PermissionGate interface {
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
}

// FixSource produces one coordinate reading from a platform location subsystem.
type FixSource interface {
	Sample(ctx context.Context) (domain.Coordinates, error)
}

// Provider implements ports.PositionProvider by pairing a permission gate
// with a fix source.
type Provider struct {
	Gate   PermissionGate
	Source FixSource
}

func NewProvider(gate PermissionGate, source FixSource) (*Provider, error) {
	if gate == nil {
		return nil, errors.New("position provider: gate is nil")
	}
	if source == nil {
		return nil, errors.New("position provider: source is nil")
	}
	return &Provider{Gate: gate, Source: source}, nil
}

func (p *Provider) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	return p.Gate.RequestPermission(ctx)
}

// SampleCurrentPosition delegates to the source. Errors are always
// reported as ErrPositionUnavailable.
func (p *Provider) SampleCurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	c, err := p.Source.Sample(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrPositionUnavailable) {
			return domain.Coordinates{}, err
		}
		return domain.Coordinates{}, fmt.Errorf("sample position: %w: %w", domain.ErrPositionUnavailable, err)
	}
	return c, nil
}
