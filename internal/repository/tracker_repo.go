package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/timmy/autoposter/internal/domain"
	"github.com/timmy/autoposter/internal/logger"
	"github.com/timmy/autoposter/internal/storage"
)

const trackerContentType = "application/json"

// TrackerRepository is the tracking store: it owns the persisted tracking
// document in the blob store. Every save is a full-document overwrite.
//
// The repository never fails a run: when the backing store is unreachable it
// degrades to an in-memory state, which means progress made during that run
// is not resumable by future runs.
type TrackerRepository struct {
	store    storage.ObjectStorage
	key      string
	logger   *logger.Logger
	degraded bool
	now      func() time.Time
}

// NewTrackerRepository creates a tracking store over the given object key.
// Parameters:
//   - store: blob store backend.
//   - key: object key of the tracking document.
//   - log: logger instance.
// Returns:
//   - *TrackerRepository: initialized repository.
func NewTrackerRepository(store storage.ObjectStorage, key string, log *logger.Logger) *TrackerRepository {
	return &TrackerRepository{
		store:  store,
		key:    key,
		logger: log,
		now:    time.Now,
	}
}

// Load returns the persisted tracking state. A missing document is replaced
// by a fresh zero-value state which is persisted immediately; an unreachable
// store yields an in-memory zero state and flips the repository into
// degraded mode.
func (r *TrackerRepository) Load(ctx context.Context) *domain.TrackingState {
	data, err := storage.GetBytes(ctx, r.store, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.CtxInfo(ctx, "No existing tracking data found, creating new tracking document")
			state := domain.NewTrackingState()
			if saveErr := r.Save(ctx, state); saveErr != nil {
				r.degraded = true
			}
			return state
		}
		logger.CtxError(ctx, "Failed to load tracking data, continuing in degraded mode: %v", err)
		r.degraded = true
		return domain.NewTrackingState()
	}

	state := domain.NewTrackingState()
	if err := json.Unmarshal(data, state); err != nil {
		logger.CtxError(ctx, "Failed to parse tracking data, continuing in degraded mode: %v", err)
		r.degraded = true
		return domain.NewTrackingState()
	}
	if state.Posts == nil {
		state.Posts = make(map[string][]*domain.PostRecord)
	}
	return state
}

// Save stamps the last-run timestamp and overwrites the tracking document.
// Failures are logged and reported but must not abort the run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - state: full tracking state to persist.
// Returns:
//   - error: non-nil if the write failed (best-effort durability).
func (r *TrackerRepository) Save(ctx context.Context, state *domain.TrackingState) error {
	state.LastRun = r.now().Format("2006-01-02 15:04:05")

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		logger.CtxError(ctx, "Failed to marshal tracking data: %v", err)
		return err
	}
	if err := storage.PutBytes(ctx, r.store, r.key, data, trackerContentType); err != nil {
		logger.CtxError(ctx, "Failed to persist tracking data: %v", err)
		r.degraded = true
		return err
	}
	return nil
}

// Degraded reports whether any persistence failure has made this run
// non-resumable.
func (r *TrackerRepository) Degraded() bool {
	return r.degraded
}

// AcquireLease claims the advisory run lease inside the tracking document.
// The claim succeeds when no lease exists, the existing lease has expired,
// or the caller already owns it. Best effort: the lease rides the same
// read-modify-write document as everything else.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - state: loaded tracking state (mutated in place).
//   - owner: lease owner id, usually the run id.
//   - ttl: lease lifetime.
// Returns:
//   - bool: true if the lease is now held by owner.
func (r *TrackerRepository) AcquireLease(ctx context.Context, state *domain.TrackingState, owner string, ttl time.Duration) bool {
	now := r.now()
	if state.Lease != nil && !state.Lease.Expired(now) && state.Lease.Owner != owner {
		logger.CtxWarn(ctx, "Run lease held by %s until %s, refusing to start",
			state.Lease.Owner, state.Lease.ExpiresAt.Format(time.RFC3339))
		return false
	}
	if state.Lease != nil && state.Lease.Expired(now) {
		logger.CtxWarn(ctx, "Stealing expired run lease from %s", state.Lease.Owner)
	}
	state.Lease = &domain.RunLease{Owner: owner, ExpiresAt: now.Add(ttl)}
	r.Save(ctx, state)
	return true
}

// ReleaseLease drops the lease if the caller still owns it.
func (r *TrackerRepository) ReleaseLease(ctx context.Context, state *domain.TrackingState, owner string) {
	if state.Lease == nil || state.Lease.Owner != owner {
		return
	}
	state.Lease = nil
	r.Save(ctx, state)
}

// SetClock overrides the repository clock. Used by tests.
func (r *TrackerRepository) SetClock(now func() time.Time) {
	r.now = now
}
