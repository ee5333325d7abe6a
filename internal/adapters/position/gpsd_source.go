package position

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"location-capture-service/internal/domain"
	"location-capture-service/internal/platform/obs"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const watchCommand = `?WATCH={"enable":true,"json":true};` + "\n"

// gpsd reports are single-line JSON objects; SKY reports can be large.
const maxReportBytes = 1 << 20

// Subset of the gpsd JSON protocol used to pick out a fix.
type gpsdReport struct {
	Class   string   `json:"class"`
	Mode    int      `json:"mode"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Message string   `json:"message"`
}

// GpsdSource reads one fix from a gpsd daemon.
//
// Each Sample opens a fresh connection, enables JSON watch mode and returns
// the first TPV report with a 2D or 3D fix. Sample blocks until such a report
// arrives or ctx ends; it never applies its own timeout.
type GpsdSource struct {
	addr        string
	dialer      net.Dialer
	log         zerolog.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewGpsdSource(addr string, logger zerolog.Logger) (*GpsdSource, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("gpsd source: address is empty")
	}

	return &GpsdSource{
		addr:        addr,
		log:         logger,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}, nil
}

func (g *GpsdSource) Sample(ctx context.Context) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, g.log, "gpsd.Sample")(&err)

	conn, err := g.dialWithRetry(ctx)
	if err != nil {
		return domain.Coordinates{}, unavailable("connect to gpsd at "+g.addr, err)
	}
	defer conn.Close()

	// Unblock pending reads as soon as ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		return domain.Coordinates{}, unavailable("enable gpsd watch", ctxErrOr(ctx, err))
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxReportBytes)

	for scanner.Scan() {
		var r gpsdReport
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			g.log.Debug().Err(err).Msg("skipping undecodable gpsd report")
			continue
		}

		switch r.Class {
		case "ERROR":
			return domain.Coordinates{}, unavailable("gpsd", fmt.Errorf("daemon error: %s", r.Message))
		case "TPV":
			// mode: 0 unknown, 1 no fix, 2 2D, 3 3D.
			if r.Mode < 2 || r.Lat == nil || r.Lon == nil {
				continue
			}
			return domain.Coordinates{Lat: *r.Lat, Lon: *r.Lon}, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return domain.Coordinates{}, unavailable("read gpsd reports", ctxErrOr(ctx, err))
	}
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, unavailable("read gpsd reports", err)
	}
	return domain.Coordinates{}, unavailable("read gpsd reports", errors.New("gpsd closed the connection before a fix"))
}

func unavailable(step string, err error) error {
	return fmt.Errorf("%s: %w: %w", step, domain.ErrPositionUnavailable, err)
}

func ctxErrOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
