package position

import (
	"bufio"
	"context"
	"fmt"
	"location-capture-service/internal/domain"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGpsd accepts one client, checks for the WATCH command and replays lines.
// When hold is true it keeps the connection open after the script.
func fakeGpsd(t *testing.T, script []string, hold bool) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		_ = ln.Close()
	})

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		_, _ = fmt.Fprintln(conn, `{"class":"VERSION","release":"3.25","proto_major":3,"proto_minor":15}`)

		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil || !strings.HasPrefix(line, "?WATCH=") {
			return
		}

		for _, l := range script {
			if _, err := fmt.Fprintln(conn, l); err != nil {
				return
			}
		}

		if hold {
			<-done
		}
	}()

	return ln.Addr().String()
}

func newTestGpsd(t *testing.T, addr string) *GpsdSource {
	t.Helper()
	g, err := NewGpsdSource(addr, zerolog.Nop())
	require.NoError(t, err)
	g.backoff = time.Millisecond
	return g
}

func TestGpsdSourceReturnsFirstFix(t *testing.T) {
	addr := fakeGpsd(t, []string{
		`{"class":"DEVICES","devices":[{"class":"DEVICE","path":"/dev/ttyUSB0"}]}`,
		`{"class":"WATCH","enable":true,"json":true}`,
		`not json at all`,
		`{"class":"TPV","device":"/dev/ttyUSB0","mode":1}`,
		`{"class":"SKY","satellites":[]}`,
		`{"class":"TPV","device":"/dev/ttyUSB0","mode":3,"lat":-23.5505,"lon":-46.6333,"alt":760.0}`,
		`{"class":"TPV","device":"/dev/ttyUSB0","mode":3,"lat":1.0,"lon":1.0}`,
	}, true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := newTestGpsd(t, addr).Sample(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: -23.5505, Lon: -46.6333}, got)
}

func TestGpsdSourceHonorsContextDeadline(t *testing.T) {
	addr := fakeGpsd(t, []string{`{"class":"TPV","mode":1}`}, true)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestGpsd(t, addr).Sample(ctx)
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestGpsdSourceClosedBeforeFix(t *testing.T) {
	addr := fakeGpsd(t, []string{`{"class":"TPV","mode":0}`}, false)

	_, err := newTestGpsd(t, addr).Sample(context.Background())
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
}

func TestGpsdSourceDaemonError(t *testing.T) {
	addr := fakeGpsd(t, []string{`{"class":"ERROR","message":"unrecognized request"}`}, true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := newTestGpsd(t, addr).Sample(ctx)
	require.ErrorIs(t, err, domain.ErrPositionUnavailable)
	assert.Contains(t, err.Error(), "unrecognized request")
}

func TestGpsdSourceNoDaemon(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	g := newTestGpsd(t, addr)
	g.maxAttempts = 2

	_, err = g.Sample(context.Background())
	assert.ErrorIs(t, err, domain.ErrPositionUnavailable)
}

func TestNewGpsdSourceEmptyAddr(t *testing.T) {
	_, err := NewGpsdSource("  ", zerolog.Nop())
	assert.Error(t, err)
}
