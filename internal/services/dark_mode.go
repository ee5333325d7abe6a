package services

import (
	"context"
	"errors"
	"fmt"
	"location-capture-service/internal/ports"
	"strconv"
	"sync"
)

const DarkModeKey = "@darkMode"

// DarkModeService reads and writes the dark-mode flag.
// Only the exact value "true" enables it.
type DarkModeService struct {
	prefs ports.PreferenceStore
	mu    sync.Mutex
}

func NewDarkModeService(prefs ports.PreferenceStore) (*DarkModeService, error) {
	if prefs == nil {
		return nil, errors.New("dark mode service: preference store is nil")
	}
	return &DarkModeService{prefs: prefs}, nil
}

func (s *DarkModeService) Get(ctx context.Context) (bool, error) {
	v, ok, err := s.prefs.Get(ctx, DarkModeKey)
	if err != nil {
		return false, fmt.Errorf("get dark mode: %w", err)
	}
	return ok && v == "true", nil
}

func (s *DarkModeService) Set(ctx context.Context, enabled bool) error {
	if err := s.prefs.Set(ctx, DarkModeKey, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("set dark mode: %w", err)
	}
	return nil
}

// Toggle flips the stored flag and returns the new value.
func (s *DarkModeService) Toggle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("toggle dark mode: %w", err)
	}
	if err := s.Set(ctx, !cur); err != nil {
		return false, fmt.Errorf("toggle dark mode: %w", err)
	}
	return !cur, nil
}
