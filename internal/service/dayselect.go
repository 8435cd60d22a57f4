package service

import (
	"context"
	"time"

	"github.com/timmy/autoposter/internal/domain"
	"github.com/timmy/autoposter/internal/logger"
)

// SelectOutcome classifies the result of a day-selection attempt.
type SelectOutcome int

const (
	// OutcomeSelected means a day was chosen and the state was stamped.
	OutcomeSelected SelectOutcome = iota
	// OutcomeAlreadyRan means a day was already started this calendar day.
	OutcomeAlreadyRan
	// OutcomeNoWork means the schedule has no calendar to select from.
	OutcomeNoWork
)

// DaySelector decides which calendar slot the next run drains. At most one
// new day starts per calendar date; the cycle advances past the highest day
// ever recorded and wraps back to the first day when the calendar runs out.
type DaySelector struct {
	now func() time.Time
}

// NewDaySelector creates a selector. A nil clock defaults to time.Now.
func NewDaySelector(now func() time.Time) *DaySelector {
	if now == nil {
		now = time.Now
	}
	return &DaySelector{now: now}
}

// Select picks the next day to process and stamps the tracking state with
// today's date and the chosen key. The caller must handle an in-flight
// cursor before selecting; Select never resumes.
// Parameters:
//   - ctx: context for logging.
//   - state: loaded tracking state (mutated on selection).
//   - sched: full posting calendar.
// Returns:
//   - domain.DayKey: chosen day, empty unless the outcome is OutcomeSelected.
//   - SelectOutcome: what happened.
func (s *DaySelector) Select(ctx context.Context, state *domain.TrackingState, sched *domain.ScheduleConfig) (domain.DayKey, SelectOutcome) {
	today := s.now().Format("2006-01-02")
	if state.LastProcessedDay == today {
		logger.CtxInfo(ctx, "Already started a day on %s, nothing to select", today)
		return "", OutcomeAlreadyRan
	}

	if len(sched.ReferenceDayKeys()) == 0 {
		logger.CtxWarn(ctx, "Schedule has no day entries, nothing to select")
		return "", OutcomeNoWork
	}

	// A state that never started a day begins the cycle at the first slot,
	// whatever the post history claims
	day := domain.FirstDay
	if state.LastProcessedDay != "" {
		if max, ok := state.MaxRecordedDay(); ok {
			day = max.Next()
			if !sched.HasDay(day) {
				// End of calendar, cycle restarts
				day = domain.FirstDay
			}
		}
	}

	state.LastProcessedDay = today
	logger.CtxInfo(ctx, "Selected %s for processing", day)
	return day, OutcomeSelected
}
