package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/timmy/autoposter/internal/domain"
)

func testScheduleConfig(t *testing.T) *domain.ScheduleConfig {
	t.Helper()
	cfg := &domain.ScheduleConfig{}
	if err := json.Unmarshal([]byte(testSchedule), cfg); err != nil {
		t.Fatalf("failed to parse test schedule: %v", err)
	}
	return cfg
}

func TestSelectFirstRun(t *testing.T) {
	sel := NewDaySelector(fixedClock(testNoon))
	state := domain.NewTrackingState()
	sched := testScheduleConfig(t)

	day, outcome := sel.Select(context.Background(), state, sched)
	if outcome != OutcomeSelected {
		t.Fatalf("outcome = %v, want OutcomeSelected", outcome)
	}
	if day != domain.FirstDay {
		t.Errorf("first run selected %s, want %s", day, domain.FirstDay)
	}
	if state.LastProcessedDay != "2026-08-25" {
		t.Errorf("last processed day = %s, want 2026-08-25", state.LastProcessedDay)
	}
	if state.LastProcessedKey != "" {
		t.Errorf("last processed key = %s, selection must leave it for finalization", state.LastProcessedKey)
	}
}

func TestSelectFreshStateIgnoresHistory(t *testing.T) {
	sel := NewDaySelector(fixedClock(testNoon))
	state := domain.NewTrackingState()
	// Recorded posts without a processed date mean the cycle never started
	state.AppendPost("channel1", &domain.PostRecord{Day: "day2"})
	sched := testScheduleConfig(t)

	day, outcome := sel.Select(context.Background(), state, sched)
	if outcome != OutcomeSelected || day != domain.FirstDay {
		t.Errorf("selected %s (%v), want %s", day, outcome, domain.FirstDay)
	}
}

func TestSelectOncePerCalendarDay(t *testing.T) {
	sel := NewDaySelector(fixedClock(testNoon))
	state := domain.NewTrackingState()
	sched := testScheduleConfig(t)

	if _, outcome := sel.Select(context.Background(), state, sched); outcome != OutcomeSelected {
		t.Fatal("first selection should succeed")
	}
	if _, outcome := sel.Select(context.Background(), state, sched); outcome != OutcomeAlreadyRan {
		t.Error("second selection on the same date must be refused")
	}

	// The next calendar day starts a new cycle step
	later := NewDaySelector(fixedClock(testNoon.Add(24 * time.Hour)))
	if _, outcome := later.Select(context.Background(), state, sched); outcome != OutcomeSelected {
		t.Error("next calendar day should select again")
	}
}

func TestSelectAdvancesPastMaxRecordedDay(t *testing.T) {
	sel := NewDaySelector(fixedClock(testNoon))
	state := domain.NewTrackingState()
	state.LastProcessedDay = "2026-08-24"
	state.AppendPost("channel1", &domain.PostRecord{Day: "day1"})
	sched := testScheduleConfig(t)

	day, outcome := sel.Select(context.Background(), state, sched)
	if outcome != OutcomeSelected || day != "day2" {
		t.Errorf("selected %s (%v), want day2", day, outcome)
	}
}

func TestSelectWrapsAroundCalendar(t *testing.T) {
	sel := NewDaySelector(fixedClock(testNoon))
	state := domain.NewTrackingState()
	state.LastProcessedDay = "2026-08-24"
	// day2 is the last slot in the reference calendar
	state.AppendPost("channel1", &domain.PostRecord{Day: "day2"})
	sched := testScheduleConfig(t)

	day, outcome := sel.Select(context.Background(), state, sched)
	if outcome != OutcomeSelected || day != domain.FirstDay {
		t.Errorf("selected %s (%v), want wraparound to %s", day, outcome, domain.FirstDay)
	}
}

func TestSelectFallsBackOnUnparseableHistory(t *testing.T) {
	sel := NewDaySelector(fixedClock(testNoon))
	state := domain.NewTrackingState()
	state.LastProcessedDay = "2026-08-24"
	state.AppendPost("channel1", &domain.PostRecord{Day: "garbage"})
	sched := testScheduleConfig(t)

	day, outcome := sel.Select(context.Background(), state, sched)
	if outcome != OutcomeSelected || day != domain.FirstDay {
		t.Errorf("selected %s (%v), want fallback to %s", day, outcome, domain.FirstDay)
	}
}

func TestSelectNoWorkOnEmptyCalendar(t *testing.T) {
	sel := NewDaySelector(fixedClock(testNoon))
	state := domain.NewTrackingState()
	sched := &domain.ScheduleConfig{}

	if _, outcome := sel.Select(context.Background(), state, sched); outcome != OutcomeNoWork {
		t.Errorf("outcome = %v, want OutcomeNoWork", outcome)
	}
	if state.LastProcessedDay != "" {
		t.Error("no-work selection must not stamp the state")
	}
}
