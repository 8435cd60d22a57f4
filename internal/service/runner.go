package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/autoposter/internal/config"
	"github.com/timmy/autoposter/internal/domain"
	"github.com/timmy/autoposter/internal/logger"
	"github.com/timmy/autoposter/internal/publish"
	"github.com/timmy/autoposter/internal/render"
	"github.com/timmy/autoposter/internal/repository"
)

// RunStatus classifies one run-controller invocation.
type RunStatus string

const (
	// RunCompleted means the active day was fully drained and finalized.
	RunCompleted RunStatus = "completed"
	// RunPartial means the budget expired with units still pending.
	RunPartial RunStatus = "partial"
	// RunSkipped means a day was already started this calendar date.
	RunSkipped RunStatus = "skipped"
	// RunNoWork means the schedule has nothing to process.
	RunNoWork RunStatus = "no_work"
	// RunBusy means another invocation holds the run lease.
	RunBusy RunStatus = "busy"
	// RunFailed means the run could not start at all.
	RunFailed RunStatus = "failed"
)

// RunResult summarizes one invocation for callers and the trigger surface.
type RunResult struct {
	RunID        string        `json:"run_id"`
	Status       RunStatus     `json:"status"`
	Summary      string        `json:"summary"`
	Day          domain.DayKey `json:"day,omitempty"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	PendingUnits []string      `json:"pending_units,omitempty"`
}

// stateGuard serializes every mutation of the shared tracking state between
// the drain loop and the scheduler's publish tasks, persisting after each
// change so a crash loses at most the in-flight step.
type stateGuard struct {
	mu      sync.Mutex
	state   *domain.TrackingState
	tracker *repository.TrackerRepository
	records []*domain.PostRecord
}

func newStateGuard(state *domain.TrackingState, tracker *repository.TrackerRepository) *stateGuard {
	return &stateGuard{state: state, tracker: tracker}
}

// appendPost records a fresh post under the channel's history and persists.
func (g *stateGuard) appendPost(ctx context.Context, historyKey string, rec *domain.PostRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.AppendPost(historyKey, rec)
	g.records = append(g.records, rec)
	g.tracker.Save(ctx, g.state)
}

// update applies a mutation under the lock and persists.
func (g *stateGuard) update(ctx context.Context, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
	g.tracker.Save(ctx, g.state)
}

// save persists the current state.
func (g *stateGuard) save(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracker.Save(ctx, g.state)
}

// runRecords snapshots the records created by this run.
func (g *stateGuard) runRecords() []*domain.PostRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*domain.PostRecord, len(g.records))
	copy(out, g.records)
	return out
}

// Runner is the run controller: one invocation selects or resumes a day,
// drains its units within the wall-clock budget, and persists progress after
// every step. It never lets an internal failure escape as a panic.
type Runner struct {
	tracker   *repository.TrackerRepository
	schedules *repository.ScheduleRepository
	archive   *repository.ArchiveRepository
	renderer  render.Renderer
	publisher publish.Publisher
	cfg       config.RunnerConfig
	now       func() time.Time
}

// NewRunner wires a run controller.
// Parameters:
//   - tracker: tracking-document repository.
//   - schedules: schedule and title-bank repository.
//   - archive: relational archive, nil disables mirroring.
//   - renderer: composition service client.
//   - publisher: platform upload registry.
//   - cfg: runner budget and lease settings.
// Returns:
//   - *Runner: initialized controller.
func NewRunner(tracker *repository.TrackerRepository, schedules *repository.ScheduleRepository, archive *repository.ArchiveRepository, renderer render.Renderer, publisher publish.Publisher, cfg config.RunnerConfig) *Runner {
	return &Runner{
		tracker:   tracker,
		schedules: schedules,
		archive:   archive,
		renderer:  renderer,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetClock overrides the controller clock. Used by tests.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run executes one bounded invocation end to end.
func (r *Runner) Run(ctx context.Context) (result *RunResult) {
	runID := uuid.New().String()
	ctx = logger.SetRunID(ctx, runID)
	start := r.now()

	defer func() {
		if rec := recover(); rec != nil {
			logger.CtxError(ctx, "Run aborted by panic: %v", rec)
			result = &RunResult{
				RunID:   runID,
				Status:  RunFailed,
				Summary: fmt.Sprintf("run aborted: %v", rec),
			}
		}
	}()

	logger.CtxInfo(ctx, "Run starting")

	sched, err := r.schedules.LoadSchedule(ctx)
	if err != nil {
		logger.CtxError(ctx, "Cannot start run: %v", err)
		return &RunResult{RunID: runID, Status: RunFailed, Summary: err.Error()}
	}
	titles := r.schedules.LoadTitles(ctx, false)
	shortTitles := r.schedules.LoadTitles(ctx, true)

	state := r.tracker.Load(ctx)
	if !r.tracker.AcquireLease(ctx, state, runID, r.cfg.LeaseTTL()) {
		return &RunResult{RunID: runID, Status: RunBusy, Summary: "another run holds the lease"}
	}
	defer r.tracker.ReleaseLease(ctx, state, runID)

	guard := newStateGuard(state, r.tracker)

	// Resume an interrupted day before considering a new one
	var day domain.DayKey
	if state.Chunked.Active() {
		day = state.Chunked.ActiveDay
		logger.CtxInfo(ctx, "Resuming %s: %d units pending", day, len(state.Chunked.Pending))
	} else {
		selected, outcome := NewDaySelector(r.now).Select(ctx, state, sched)
		switch outcome {
		case OutcomeAlreadyRan:
			return &RunResult{RunID: runID, Status: RunSkipped, Summary: "a day was already started today"}
		case OutcomeNoWork:
			return &RunResult{RunID: runID, Status: RunNoWork, Summary: "schedule has no content days"}
		}
		day = selected
		state.Chunked.Begin(day, sched.UnitIDs())
		guard.save(ctx)
	}
	ctx = logger.SetDay(ctx, string(day))

	deadline := start.Add(r.cfg.Budget())
	scheduler := NewPostScheduler(r.cfg.PublishClamp(), r.now)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	proc := NewUnitProcessor(r.renderer, r.publisher, scheduler, guard, r.archive, runID, r.now)

	var preFailed int
	// Units left pending after a unit-level failure this run; they stay in
	// the persisted cursor for the next invocation but are not retried now
	skipped := make(map[string]bool)
	for {
		unitID, ok := nextPendingUnit(&state.Chunked, skipped)
		if !ok {
			break
		}
		if !r.now().Before(deadline) {
			logger.CtxWarn(ctx, "Budget exhausted with %d units pending", len(state.Chunked.Pending))
			break
		}

		uctx := logger.SetUnitID(ctx, unitID)
		logger.CtxInfo(uctx, "Processing unit %s", unitID)
		scheduled, failed, completed := proc.Process(uctx, unitID, day, sched, titles, shortTitles, deadline)
		preFailed += failed
		logger.CtxInfo(uctx, "Unit %s: %d scheduled, %d failed", unitID, scheduled, failed)

		if completed {
			guard.update(ctx, func() {
				state.Chunked.Complete(unitID)
			})
			continue
		}
		if !r.now().Before(deadline) {
			logger.CtxWarn(uctx, "Unit %s truncated by the budget, staying pending", unitID)
			break
		}
		logger.CtxWarn(uctx, "Unit %s failed, staying pending for the next run", unitID)
		skipped[unitID] = true
	}

	// Let every queued publish attempt run before summarizing
	if err := scheduler.Flush(ctx); err != nil {
		logger.CtxWarn(ctx, "Publish queue flush interrupted: %v", err)
	}

	published, publishFailed := tallyRecords(guard.runRecords())
	errorCount := preFailed + publishFailed

	if !state.Chunked.IsDrained() {
		pending := append([]string{}, state.Chunked.Pending...)
		guard.save(ctx)
		summary := fmt.Sprintf("%s incomplete: %d published, %d errors, %d units pending", day, published, errorCount, len(pending))
		logger.CtxWarn(ctx, "%s", summary)
		return &RunResult{
			RunID:        runID,
			Status:       RunPartial,
			Summary:      summary,
			Day:          day,
			SuccessCount: published,
			ErrorCount:   errorCount,
			PendingUnits: pending,
		}
	}

	guard.update(ctx, func() {
		state.LastProcessedKey = day
		state.Chunked.Reset()
	})
	summary := fmt.Sprintf("%s finalized: %d published, %d errors", day, published, errorCount)
	logger.CtxInfo(ctx, "%s", summary)
	return &RunResult{
		RunID:        runID,
		Status:       RunCompleted,
		Summary:      summary,
		Day:          day,
		SuccessCount: published,
		ErrorCount:   errorCount,
	}
}

// nextPendingUnit returns the first pending unit not set aside this run.
func nextPendingUnit(c *domain.ChunkCursor, skipped map[string]bool) (string, bool) {
	for _, id := range c.Pending {
		if !skipped[id] {
			return id, true
		}
	}
	return "", false
}

// tallyRecords counts publish outcomes over the run's records.
func tallyRecords(records []*domain.PostRecord) (published, failed int) {
	for _, rec := range records {
		switch rec.Status {
		case domain.PostStatusSuccess:
			published++
		case domain.PostStatusError:
			failed++
		}
	}
	return published, failed
}
