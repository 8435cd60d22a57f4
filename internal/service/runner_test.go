package service

import (
	"context"
	"testing"
	"time"

	"github.com/timmy/autoposter/internal/config"
	"github.com/timmy/autoposter/internal/domain"
)

func newTestRunner(env *testEnv, at time.Time, budgetSeconds int) *Runner {
	cfg := config.RunnerConfig{
		BudgetSeconds:       budgetSeconds,
		LeaseTTLSeconds:     900,
		PublishClampSeconds: 1,
	}
	r := NewRunner(env.tracker, env.schedules, nil, env.renderer, env.publisher, cfg)
	r.SetClock(fixedClock(at))
	return r
}

func TestRunnerFullDay(t *testing.T) {
	env := newTestEnv()
	runner := newTestRunner(env, testNoon, 840)

	result := runner.Run(context.Background())
	if result.Status != RunCompleted {
		t.Fatalf("status = %s (%s), want completed", result.Status, result.Summary)
	}
	if result.Day != "day1" {
		t.Errorf("day = %s, want day1", result.Day)
	}
	// day1 carries one long, one short, one reel
	if result.SuccessCount != 3 || result.ErrorCount != 0 {
		t.Errorf("success=%d errors=%d, want 3/0", result.SuccessCount, result.ErrorCount)
	}

	state := env.tracker.Load(context.Background())
	if state.Chunked.Active() {
		t.Error("cursor should be reset after a finalized day")
	}
	if state.LastProcessedKey != "day1" {
		t.Errorf("last processed key = %s, want day1", state.LastProcessedKey)
	}
	if state.Lease != nil {
		t.Error("lease should be released after the run")
	}
	if len(state.Posts["channel1"]) != 3 {
		t.Errorf("channel1 history = %d records, want 3", len(state.Posts["channel1"]))
	}
}

func TestRunnerSkipsSecondRunSameDate(t *testing.T) {
	env := newTestEnv()
	first := newTestRunner(env, testNoon, 840)
	if result := first.Run(context.Background()); result.Status != RunCompleted {
		t.Fatalf("first run status = %s", result.Status)
	}

	second := newTestRunner(env, testNoon.Add(time.Hour), 840)
	result := second.Run(context.Background())
	if result.Status != RunSkipped {
		t.Errorf("second run status = %s, want skipped", result.Status)
	}
}

func TestRunnerAdvancesNextCalendarDay(t *testing.T) {
	env := newTestEnv()
	if result := newTestRunner(env, testNoon, 840).Run(context.Background()); result.Status != RunCompleted {
		t.Fatalf("first run status = %s", result.Status)
	}

	result := newTestRunner(env, testNoon.Add(24*time.Hour), 840).Run(context.Background())
	if result.Status != RunCompleted {
		t.Fatalf("second run status = %s (%s)", result.Status, result.Summary)
	}
	if result.Day != "day2" {
		t.Errorf("second run day = %s, want day2", result.Day)
	}

	// day2 only has the channel1 long
	if result.SuccessCount != 1 {
		t.Errorf("second run success = %d, want 1", result.SuccessCount)
	}
}

func TestRunnerWrapsAroundCalendar(t *testing.T) {
	env := newTestEnv()
	newTestRunner(env, testNoon, 840).Run(context.Background())
	newTestRunner(env, testNoon.Add(24*time.Hour), 840).Run(context.Background())

	result := newTestRunner(env, testNoon.Add(48*time.Hour), 840).Run(context.Background())
	if result.Status != RunCompleted || result.Day != "day1" {
		t.Errorf("third run = %s on %s, want completed on day1", result.Status, result.Day)
	}
}

func TestRunnerPartialThenResume(t *testing.T) {
	env := newTestEnv()

	// Zero budget: the day is selected but no unit can start
	partial := newTestRunner(env, testNoon, 0).Run(context.Background())
	if partial.Status != RunPartial {
		t.Fatalf("status = %s, want partial", partial.Status)
	}
	if len(partial.PendingUnits) != 3 {
		t.Errorf("pending = %v, want all 3 units", partial.PendingUnits)
	}

	state := env.tracker.Load(context.Background())
	if !state.Chunked.Active() || state.Chunked.ActiveDay != "day1" {
		t.Fatal("cursor should stay active on day1 for the next run")
	}
	if state.LastProcessedKey != "" {
		t.Errorf("last processed key = %s before finalization, want empty", state.LastProcessedKey)
	}

	// The resume happens even on the same calendar date
	resumed := newTestRunner(env, testNoon.Add(time.Minute), 840).Run(context.Background())
	if resumed.Status != RunCompleted {
		t.Fatalf("resume status = %s (%s)", resumed.Status, resumed.Summary)
	}
	if resumed.Day != "day1" {
		t.Errorf("resume day = %s, want day1", resumed.Day)
	}

	final := env.tracker.Load(context.Background())
	if final.Chunked.Active() {
		t.Error("cursor should be reset after the resumed day finalizes")
	}
	if final.LastProcessedKey != "day1" {
		t.Errorf("last processed key = %s after finalization, want day1", final.LastProcessedKey)
	}
}

func TestRunnerPanickedUnitStaysPending(t *testing.T) {
	env := newTestEnv()
	env.renderer.panicOn = "Alice-001"

	result := newTestRunner(env, testNoon, 840).Run(context.Background())
	if result.Status != RunPartial {
		t.Fatalf("status = %s (%s), want partial", result.Status, result.Summary)
	}
	if len(result.PendingUnits) != 1 || result.PendingUnits[0] != "channel1" {
		t.Errorf("pending = %v, want [channel1]", result.PendingUnits)
	}
	// The other units still ran: the reel published, the panic counted once
	if result.SuccessCount != 1 || result.ErrorCount != 1 {
		t.Errorf("success=%d errors=%d, want 1/1", result.SuccessCount, result.ErrorCount)
	}

	state := env.tracker.Load(context.Background())
	if !state.Chunked.Active() || state.Chunked.ActiveDay != "day1" {
		t.Fatal("cursor should stay active on day1 for the retry")
	}
	if len(state.Chunked.Pending) != 1 || state.Chunked.Pending[0] != "channel1" {
		t.Errorf("pending units = %v, want [channel1]", state.Chunked.Pending)
	}
	if len(state.Chunked.Processed) != 2 {
		t.Errorf("processed units = %v, want the other two", state.Chunked.Processed)
	}
	if state.LastProcessedKey != "" {
		t.Errorf("last processed key = %s, day must not finalize", state.LastProcessedKey)
	}
}

func TestRunnerRefusedWhileLeaseHeld(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	state := env.tracker.Load(ctx)
	// The tracker judges expiry with its own wall clock
	state.Lease = &domain.RunLease{Owner: "other-run", ExpiresAt: time.Now().Add(10 * time.Minute)}
	if err := env.tracker.Save(ctx, state); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	runner := newTestRunner(env, testNoon, 840)
	result := runner.Run(ctx)
	if result.Status != RunBusy {
		t.Errorf("status = %s, want busy", result.Status)
	}
}

func TestRunnerCountsPublishFailures(t *testing.T) {
	env := newTestEnv()
	env.publisher.failUnit["channel1"] = true

	result := newTestRunner(env, testNoon, 840).Run(context.Background())
	if result.Status != RunCompleted {
		t.Fatalf("status = %s, want completed", result.Status)
	}
	// channel1's long and short fail at publish, the reel still succeeds
	if result.SuccessCount != 1 || result.ErrorCount != 2 {
		t.Errorf("success=%d errors=%d, want 1/2", result.SuccessCount, result.ErrorCount)
	}

	state := env.tracker.Load(context.Background())
	var failed int
	for _, rec := range state.Posts["channel1"] {
		if rec.Status == domain.PostStatusError {
			if rec.Error == "" {
				t.Error("failed record missing error message")
			}
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("failed records = %d, want 2", failed)
	}
}

func TestRunnerFailsWithoutSchedule(t *testing.T) {
	env := newTestEnv()
	if err := env.store.Delete(context.Background(), "content_posting_schedule.json"); err != nil {
		t.Fatalf("failed to remove schedule: %v", err)
	}

	result := newTestRunner(env, testNoon, 840).Run(context.Background())
	if result.Status != RunFailed {
		t.Errorf("status = %s, want failed", result.Status)
	}
}
