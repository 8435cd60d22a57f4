package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/timmy/autoposter/internal/logger"
	"github.com/timmy/autoposter/internal/publish"
	"github.com/timmy/autoposter/internal/render"
	"github.com/timmy/autoposter/internal/repository"
	"github.com/timmy/autoposter/internal/storage"
)

const testSchedule = `{
  "youtubeChannels": {
    "channel1": {
      "credentials": {"client_id": "id1", "client_secret": "sec1", "refresh_token": "tok1"},
      "day1": {
        "long": {"clip": "Alice-001", "textCTA": "cta-a", "videoCTA": "cta-b", "title": 1, "postTime": "14:00"},
        "shorts": [
          {"clip": "Alice-002", "musicTrack": "track1", "textCTA": "cta-a", "videoCTA": "cta-b", "postTime": "16:00"}
        ]
      },
      "day2": {
        "long": {"clip": "Alice-003", "textCTA": "cta-a", "videoCTA": "cta-b", "title": 2, "postTime": "14:00"}
      }
    },
    "channel2": {
      "credentials": {"client_id": "id2", "client_secret": "sec2", "refresh_token": "tok2"},
      "day1": {}
    }
  },
  "instagramAccounts": {
    "account1": {
      "credentials": {"username": "user1", "password": "pass1"},
      "day1": {
        "reels": [
          {"clip": "Alice-002", "musicTrack": "track1", "textCTA": "cta-a", "descriptionCTA": "desc", "postTime": "18:00"}
        ]
      }
    }
  }
}`

const testTitles = `{"Alice-001": ["First Title", "Second Title"]}`

// fakeRenderer answers render requests from memory and can be scripted to
// fail or panic per clip.
type fakeRenderer struct {
	mu       sync.Mutex
	requests []*render.Request
	failClip map[string]bool
	panicOn  string
}

func (f *fakeRenderer) Render(ctx context.Context, req *render.Request) (*render.Asset, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if req.ClipID == f.panicOn {
		panic("renderer blew up on " + req.ClipID)
	}
	if f.failClip[req.ClipID] {
		return nil, fmt.Errorf("render failed for %s", req.ClipID)
	}
	return &render.Asset{
		Path:        "/tmp/" + req.ClipID + ".mp4",
		Title:       req.Title,
		Description: "desc for " + req.ClipID,
	}, nil
}

func (f *fakeRenderer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakePublisher records publish requests and can be scripted to fail per
// unit id.
type fakePublisher struct {
	mu       sync.Mutex
	requests []*publish.Request
	failUnit map[string]bool
}

func (f *fakePublisher) Publish(ctx context.Context, req *publish.Request) (*publish.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.failUnit[req.UnitID] {
		return nil, fmt.Errorf("publish failed for %s", req.UnitID)
	}
	return &publish.Result{
		PostID: "post-" + req.Title,
		URL:    "https://example.com/post-" + req.Title,
	}, nil
}

func (f *fakePublisher) published() []*publish.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*publish.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// testEnv wires a full pipeline over in-memory storage.
type testEnv struct {
	store     *storage.MemoryStorage
	tracker   *repository.TrackerRepository
	schedules *repository.ScheduleRepository
	renderer  *fakeRenderer
	publisher *fakePublisher
}

func newTestEnv() *testEnv {
	log := logger.New(&logger.Config{Level: "error", Format: "json", ServiceName: "test"})
	logger.SetDefaultLogger(log)

	store := storage.NewMemoryStorage()
	ctx := context.Background()
	storage.PutBytes(ctx, store, "content_posting_schedule.json", []byte(testSchedule), "application/json")
	storage.PutBytes(ctx, store, "titles.json", []byte(testTitles), "application/json")
	storage.PutBytes(ctx, store, "titles-shorts.json", []byte(testTitles), "application/json")

	return &testEnv{
		store:     store,
		tracker:   repository.NewTrackerRepository(store, "posting_tracker.json", log),
		schedules: repository.NewScheduleRepository(store, "content_posting_schedule.json", "titles.json", "titles-shorts.json", log),
		renderer:  &fakeRenderer{failClip: map[string]bool{}},
		publisher: &fakePublisher{failUnit: map[string]bool{}},
	}
}

// fixedClock returns a clock frozen at the given instant.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

var testNoon = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
