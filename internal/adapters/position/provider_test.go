package position

import (
	"bytes"
	"context"
	"errors"
	"io"
	"location-capture-service/internal/domain"
	"location-capture-service/internal/ports"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.PositionProvider = (*Provider)(nil)
	_ ports.PositionProvider = (*MockPositionProvider)(nil)
	_ PermissionGate         = StaticGate{}
	_ PermissionGate         = (*PromptGate)(nil)
	_ FixSource              = StaticSource{}
	_ FixSource              = (*GpsdSource)(nil)
)

type failingSource struct{ err error }

func (f failingSource) Sample(ctx context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, f.err
}

func TestProviderDelegates(t *testing.T) {
	fix := domain.Coordinates{Lat: 10, Lon: 20}
	p, err := NewProvider(StaticGate{Status: domain.PermissionRestricted}, StaticSource{Fix: fix})
	require.NoError(t, err)

	status, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionRestricted, status)

	got, err := p.SampleCurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fix, got)
}

func TestProviderWrapsSourceErrors(t *testing.T) {
	p, err := NewProvider(StaticGate{Status: domain.PermissionGranted}, failingSource{err: errors.New("airplane mode")})
	require.NoError(t, err)

	_, err = p.SampleCurrentPosition(context.Background())
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
	assert.Contains(t, err.Error(), "airplane mode")
}

func TestNewProviderRequiresParts(t *testing.T) {
	_, err := NewProvider(nil, StaticSource{})
	assert.Error(t, err)
	_, err = NewProvider(StaticGate{}, nil)
	assert.Error(t, err)
}

func TestStaticSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := StaticSource{}.Sample(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromptGateAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  domain.PermissionStatus
	}{
		{"y\n", domain.PermissionGranted},
		{"YES\n", domain.PermissionGranted},
		{" yes \n", domain.PermissionGranted},
		{"n\n", domain.PermissionDenied},
		{"\n", domain.PermissionDenied},
		{"", domain.PermissionDenied},
		{"y", domain.PermissionGranted},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			g := NewPromptGate(strings.NewReader(tt.input), &out)

			got, err := g.RequestPermission(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, promptQuestion, out.String())
		})
	}
}

func TestPromptGateCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	g := NewPromptGate(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.RequestPermission(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPromptGateReusableAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	g := NewPromptGate(pr, &out)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.RequestPermission(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() { _, _ = io.WriteString(pw, "y\nn\n") }()

	status, err := g.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionGranted, status)

	status, err = g.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionDenied, status)

	require.NoError(t, pw.Close())
	status, err = g.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionDenied, status)

	assert.Equal(t, strings.Repeat(promptQuestion, 4), out.String())
}

func TestPromptGateConcurrentRequests(t *testing.T) {
	pr, pw := io.Pipe()
	g := NewPromptGate(pr, io.Discard)

	results := make(chan domain.PermissionStatus, 2)
	for range 2 {
		go func() {
			status, err := g.RequestPermission(context.Background())
			assert.NoError(t, err)
			results <- status
		}()
	}

	_, err := io.WriteString(pw, "yes\nno\n")
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	got := []domain.PermissionStatus{<-results, <-results}
	assert.ElementsMatch(t, []domain.PermissionStatus{domain.PermissionGranted, domain.PermissionDenied}, got)
}

func TestPromptGateReadError(t *testing.T) {
	pr, pw := io.Pipe()
	require.NoError(t, pw.CloseWithError(errors.New("tty detached")))

	g := NewPromptGate(pr, io.Discard)
	_, err := g.RequestPermission(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty detached")
}
