package services

import (
	"context"
	"errors"
	"fmt"
	"location-capture-service/internal/domain"
	"location-capture-service/internal/platform/obs"
	"location-capture-service/internal/ports"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultSampleTimeout = 30 * time.Second

type CaptureOptions struct {
	// Bound applied to SampleCurrentPosition. Zero or negative disables it.
	SampleTimeout time.Duration
	Logger        zerolog.Logger
	Metrics       *obs.CaptureMetrics
	// Called on every state change of an attempt, terminal states included.
	OnTransition func(attemptID string, state domain.CaptureState)
}

// CaptureController runs the capture pipeline:
// permission -> sample -> persist -> refresh.
//
// At most one capture runs at a time; a concurrent Capture is rejected with
// ErrCaptureInProgress rather than queued. A failed step ends the attempt;
// nothing is retried.
type CaptureController struct {
	store    ports.LocationStore
	provider ports.PositionProvider
	opts     CaptureOptions

	inFlight atomic.Bool
	state    atomic.Value // domain.CaptureState

	mu       sync.RWMutex
	snapshot []domain.LocationRecord
}

func NewCaptureController(
	store ports.LocationStore,
	provider ports.PositionProvider,
	opts CaptureOptions,
) (*CaptureController, error) {
	if store == nil {
		return nil, errors.New("capture controller: store is nil")
	}
	if provider == nil {
		return nil, errors.New("capture controller: provider is nil")
	}

	c := &CaptureController{store: store, provider: provider, opts: opts}
	c.state.Store(domain.StateIdle)
	return c, nil
}

// State returns the state of the in-flight attempt, or the terminal state
// of the last one.
func (c *CaptureController) State() domain.CaptureState {
	return c.state.Load().(domain.CaptureState)
}

// Snapshot returns a copy of the list published by the last successful
// capture or ListAll, without touching the store. It is stale as soon as
// another writer persists a record.
func (c *CaptureController) Snapshot() []domain.LocationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.LocationRecord, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// ListAll reads every stored record and publishes the result.
func (c *CaptureController) ListAll(ctx context.Context) ([]domain.LocationRecord, error) {
	records, err := c.store.ListAll(ctx)
	if err != nil {
		return nil, c.asStorageErr("list locations", err)
	}
	c.publish(records)
	return records, nil
}

// Capture performs one attempt. The returned error is always one of the
// domain taxonomy errors; the result carries the matching terminal state.
// A failure after ctx has ended is reported as ErrCaptureCancelled,
// whichever step it hit.
func (c *CaptureController) Capture(ctx context.Context) (domain.CaptureResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.opts.Metrics.ObserveRejected(string(domain.ReasonCaptureInProgress))
		return domain.CaptureResult{
			State:  domain.StateFailed,
			Reason: domain.ReasonCaptureInProgress,
		}, domain.ErrCaptureInProgress
	}
	defer c.inFlight.Store(false)

	start := time.Now()
	res := domain.CaptureResult{AttemptID: uuid.NewString()}
	log := c.opts.Logger.With().Str("attempt_id", res.AttemptID).Logger()

	err := c.run(ctx, &res, log)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("capture: %w: %w", domain.ErrCaptureCancelled, err)
	}

	res.Duration = time.Since(start)
	if err != nil {
		res.State = domain.StateFailed
		res.Reason = domain.ReasonOf(err)
		log.Warn().Err(err).Str("reason", string(res.Reason)).Dur("dur", res.Duration).Msg("capture failed")
		c.opts.Metrics.ObserveCapture(string(res.Reason), res.Duration)
	} else {
		res.State = domain.StateDone
		log.Info().Int64("record_id", res.RecordID).Dur("dur", res.Duration).Msg("capture completed")
		c.opts.Metrics.ObserveCapture(string(domain.StateDone), res.Duration)
	}
	c.transition(res.AttemptID, res.State)

	return res, err
}

func (c *CaptureController) run(ctx context.Context, res *domain.CaptureResult, log zerolog.Logger) error {
	c.transition(res.AttemptID, domain.StateRequestingPermission)
	status, err := c.provider.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("capture: request permission: %w: %w", domain.ErrPermissionDenied, err)
	}
	if status != domain.PermissionGranted {
		return fmt.Errorf("capture: permission %s: %w", status, domain.ErrPermissionDenied)
	}

	c.transition(res.AttemptID, domain.StateSampling)
	fix, err := c.sample(ctx)
	if err != nil {
		return err
	}
	log.Debug().Float64("lat", fix.Lat).Float64("lon", fix.Lon).Msg("position sampled")

	c.transition(res.AttemptID, domain.StatePersisting)
	id, err := c.store.Insert(ctx, fix.Lat, fix.Lon)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinate) {
			return fmt.Errorf("capture: persist: %w", err)
		}
		return c.asStorageErr("capture: persist", err)
	}
	res.RecordID = id

	c.transition(res.AttemptID, domain.StateRefreshing)
	records, err := c.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("capture: refresh: %w", err)
	}
	res.Records = records

	return nil
}

func (c *CaptureController) sample(ctx context.Context) (domain.Coordinates, error) {
	if c.opts.SampleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.SampleTimeout)
		defer cancel()
	}

	fix, err := c.provider.SampleCurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrPositionUnavailable) {
			return domain.Coordinates{}, fmt.Errorf("capture: sample: %w", err)
		}
		return domain.Coordinates{}, fmt.Errorf("capture: sample: %w: %w", domain.ErrPositionUnavailable, err)
	}
	return fix, nil
}

func (c *CaptureController) asStorageErr(op string, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

func (c *CaptureController) publish(records []domain.LocationRecord) {
	snap := make([]domain.LocationRecord, len(records))
	copy(snap, records)

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	c.opts.Metrics.ObserveList(len(records))
}

func (c *CaptureController) transition(attemptID string, s domain.CaptureState) {
	c.state.Store(s)
	if c.opts.OnTransition != nil {
		c.opts.OnTransition(attemptID, s)
	}
}
