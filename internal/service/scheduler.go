package service

import (
	"container/heap"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/timmy/autoposter/internal/logger"
)

// maxPublishDelay is the largest delay honored as-is. Post times further out
// are clamped to the configured substitute delay so a bounded run can still
// exercise the full publish path.
const maxPublishDelay = 5 * time.Minute

// PostTask is one deferred publish attempt.
type PostTask struct {
	UnitID  string
	ReadyAt time.Time
	Run     func(ctx context.Context)

	seq int
}

// taskHeap orders tasks by readiness, submission order breaking ties.
type taskHeap []*PostTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].ReadyAt.Equal(h[j].ReadyAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].ReadyAt.Before(h[j].ReadyAt)
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x interface{}) { *h = append(*h, x.(*PostTask)) }

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return task
}

// PostScheduler runs publish tasks at their scheduled times without ever
// blocking the caller. A single worker goroutine drains a time-ordered heap,
// so tasks for the same run execute one at a time in readiness order.
type PostScheduler struct {
	mu    sync.Mutex
	queue taskHeap
	seq   int

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	clamp time.Duration
	now   func() time.Time
}

// NewPostScheduler creates a stopped scheduler.
// Parameters:
//   - clamp: substitute delay for post times beyond maxPublishDelay.
//   - now: clock, nil defaults to time.Now.
// Returns:
//   - *PostScheduler: scheduler ready for Start.
func NewPostScheduler(clamp time.Duration, now func() time.Time) *PostScheduler {
	if now == nil {
		now = time.Now
	}
	if clamp <= 0 {
		clamp = time.Minute
	}
	return &PostScheduler{
		kick:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		clamp: clamp,
		now:   now,
	}
}

// Start launches the worker goroutine. It exits when Stop is called or the
// context is cancelled.
func (s *PostScheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Submit queues one task. Delays beyond maxPublishDelay are clamped to the
// substitute delay; past-due tasks run as soon as the worker reaches them.
func (s *PostScheduler) Submit(ctx context.Context, task *PostTask) {
	now := s.now()
	if task.ReadyAt.Sub(now) > maxPublishDelay {
		logger.CtxInfo(ctx, "Post time %s for %s is beyond the run window, clamping delay to %s",
			task.ReadyAt.Format(time.RFC3339), task.UnitID, s.clamp)
		task.ReadyAt = now.Add(s.clamp)
	}

	// The task counts as in flight before the worker can see it
	s.mu.Lock()
	task.seq = s.seq
	s.seq++
	s.wg.Add(1)
	heap.Push(&s.queue, task)
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Flush promotes every queued task to run immediately, preserving their
// relative readiness order, and waits until the queue is empty and all
// tasks have finished, or the context expires.
func (s *PostScheduler) Flush(ctx context.Context) error {
	now := s.now()
	s.mu.Lock()
	// Promotion would collapse every ReadyAt to the same instant, so bake
	// the prior readiness order into the tie-breaker first
	tasks := append([]*PostTask{}, s.queue...)
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].ReadyAt.Equal(tasks[j].ReadyAt) {
			return tasks[i].seq < tasks[j].seq
		}
		return tasks[i].ReadyAt.Before(tasks[j].ReadyAt)
	})
	for i, task := range tasks {
		task.seq = i
		task.ReadyAt = now
	}
	s.seq = len(tasks)
	heap.Init(&s.queue)
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}

	idle := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop terminates the worker. Pending tasks are abandoned; call Flush first
// when they must run.
func (s *PostScheduler) Stop() {
	close(s.done)
}

// Pending returns the number of queued, not yet started tasks.
func (s *PostScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *PostScheduler) loop(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.mu.Lock()
		var next *PostTask
		if len(s.queue) > 0 {
			next = s.queue[0]
		}
		s.mu.Unlock()

		if next == nil {
			select {
			case <-s.kick:
				continue
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}

		wait := next.ReadyAt.Sub(s.now())
		if wait > 0 {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-s.kick:
				continue
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
			continue
		}

		s.mu.Lock()
		task := heap.Pop(&s.queue).(*PostTask)
		s.mu.Unlock()

		task.Run(ctx)
		s.wg.Done()
	}
}
