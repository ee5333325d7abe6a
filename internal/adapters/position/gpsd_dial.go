package position

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// dialWithRetry retries transient connection failures (gpsd restarting,
// socket activation not yet ready) using exponential backoff while
// respecting context cancellation.
func (g *GpsdSource) dialWithRetry(ctx context.Context) (net.Conn, error) {
	maxAttempts := g.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := g.backoff

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := g.dialer.DialContext(ctx, "tcp", g.addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		var netErr net.Error
		if !errors.As(err, &netErr) || attempt == maxAttempts {
			break
		}

		g.log.Debug().
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("gpsd dial failed, retrying")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, fmt.Errorf("dial %s: %w", g.addr, lastErr)
}
