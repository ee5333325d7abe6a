package services

import (
	"context"
	"errors"
	"location-capture-service/internal/adapters/preferences"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapPrefs struct {
	values map[string]string
	err    error
}

func (m *mapPrefs) Get(ctx context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapPrefs) Set(ctx context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestDarkModeToggleTwiceSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.yaml")

	prefs, err := preferences.OpenYAMLPreferenceStore(path, zerolog.Nop())
	require.NoError(t, err)
	svc, err := NewDarkModeService(prefs)
	require.NoError(t, err)

	enabled, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = svc.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	reopened, err := preferences.OpenYAMLPreferenceStore(path, zerolog.Nop())
	require.NoError(t, err)
	raw, ok, err := reopened.Get(ctx, DarkModeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", raw)

	svc, err = NewDarkModeService(reopened)
	require.NoError(t, err)
	enabled, err = svc.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	reopened, err = preferences.OpenYAMLPreferenceStore(path, zerolog.Nop())
	require.NoError(t, err)
	svc, err = NewDarkModeService(reopened)
	require.NoError(t, err)
	enabled, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestDarkModeOnlyExactTrue(t *testing.T) {
	tests := []struct {
		stored string
		want   bool
	}{
		{"true", true},
		{"false", false},
		{"TRUE", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			svc, err := NewDarkModeService(&mapPrefs{values: map[string]string{DarkModeKey: tt.stored}})
			require.NoError(t, err)

			got, err := svc.Get(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDarkModeSetWritesLiteral(t *testing.T) {
	prefs := &mapPrefs{values: map[string]string{}}
	svc, err := NewDarkModeService(prefs)
	require.NoError(t, err)

	require.NoError(t, svc.Set(context.Background(), true))
	assert.Equal(t, "true", prefs.values[DarkModeKey])
	require.NoError(t, svc.Set(context.Background(), false))
	assert.Equal(t, "false", prefs.values[DarkModeKey])
}

func TestDarkModeStoreError(t *testing.T) {
	svc, err := NewDarkModeService(&mapPrefs{err: errors.New("read-only file system")})
	require.NoError(t, err)

	_, err = svc.Get(context.Background())
	assert.Error(t, err)
	_, err = svc.Toggle(context.Background())
	assert.Error(t, err)
}

func TestNewDarkModeServiceRequiresStore(t *testing.T) {
	_, err := NewDarkModeService(nil)
	assert.Error(t, err)
}

func TestDarkModeNonScalarValueReadsFalse(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\"@darkMode\": {enabled: true}\n"), 0o600))

	prefs, err := preferences.OpenYAMLPreferenceStore(path, zerolog.Nop())
	require.NoError(t, err)
	svc, err := NewDarkModeService(prefs)
	require.NoError(t, err)

	enabled, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = svc.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}
