package service

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSchedulerRunsTasksInReadinessOrder(t *testing.T) {
	s := NewPostScheduler(time.Minute, nil)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop()

	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) {
		return func(context.Context) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	// Far enough out that nothing fires before Flush promotes the queue,
	// so only the readiness times decide the order
	base := time.Now().Add(time.Hour)
	s.Submit(ctx, &PostTask{UnitID: "u", ReadyAt: base.Add(30 * time.Millisecond), Run: record("second")})
	s.Submit(ctx, &PostTask{UnitID: "u", ReadyAt: base.Add(10 * time.Millisecond), Run: record("first")})
	s.Submit(ctx, &PostTask{UnitID: "u", ReadyAt: base.Add(50 * time.Millisecond), Run: record("third")})

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("ran %d tasks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestSchedulerClampsFarFutureTasks(t *testing.T) {
	clock := fixedClock(testNoon)
	s := NewPostScheduler(time.Second, clock)
	ctx := context.Background()

	task := &PostTask{UnitID: "u", ReadyAt: testNoon.Add(2 * time.Hour), Run: func(context.Context) {}}
	s.Submit(ctx, task)

	if got := task.ReadyAt; !got.Equal(testNoon.Add(time.Second)) {
		t.Errorf("clamped ReadyAt = %v, want %v", got, testNoon.Add(time.Second))
	}

	// A near-term task keeps its time
	near := &PostTask{UnitID: "u", ReadyAt: testNoon.Add(30 * time.Second), Run: func(context.Context) {}}
	s.Submit(ctx, near)
	if !near.ReadyAt.Equal(testNoon.Add(30 * time.Second)) {
		t.Errorf("near-term ReadyAt changed to %v", near.ReadyAt)
	}
}

func TestSchedulerFlushWaitsForAllTasks(t *testing.T) {
	s := NewPostScheduler(time.Minute, nil)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop()

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		s.Submit(ctx, &PostTask{
			UnitID:  "u",
			ReadyAt: time.Now().Add(time.Hour), // would never fire without Flush
			Run: func(context.Context) {
				mu.Lock()
				ran++
				mu.Unlock()
			},
		})
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ran != 10 {
		t.Errorf("ran = %d, want 10", ran)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after flush, want 0", s.Pending())
	}
}

func TestSchedulerSubmitWhileDraining(t *testing.T) {
	s := NewPostScheduler(time.Minute, nil)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop()

	var mu sync.Mutex
	ran := 0
	// Past-due tasks keep the worker hot while submissions race it
	for i := 0; i < 200; i++ {
		s.Submit(ctx, &PostTask{
			UnitID:  "u",
			ReadyAt: time.Now().Add(-time.Second),
			Run: func(context.Context) {
				mu.Lock()
				ran++
				mu.Unlock()
			},
		})
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ran != 200 {
		t.Errorf("ran = %d, want 200", ran)
	}
}

func TestSchedulerFlushHonorsContext(t *testing.T) {
	s := NewPostScheduler(time.Minute, nil)
	ctx := context.Background()
	// Never started: queued tasks cannot finish
	s.Submit(ctx, &PostTask{UnitID: "u", ReadyAt: time.Now(), Run: func(context.Context) {}})

	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := s.Flush(tctx); err == nil {
		t.Error("flush should fail when tasks cannot finish in time")
	}
}
