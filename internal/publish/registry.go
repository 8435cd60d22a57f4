package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/timmy/autoposter/internal/domain"
)

// Registry is the Publisher implementation. It owns an explicit client
// registry keyed by processing-unit id: clients are constructed on first use
// from the credentials carried by the request and reused for the rest of the
// process lifetime. No package-level cache exists.
type Registry struct {
	mu        sync.Mutex
	youtube   map[string]*YouTubeClient
	instagram map[string]*InstagramClient
	timeout   time.Duration
}

// NewRegistry creates an empty client registry.
// Parameters:
//   - timeout: per-upload HTTP timeout.
// Returns:
//   - *Registry: initialized registry.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	return &Registry{
		youtube:   make(map[string]*YouTubeClient),
		instagram: make(map[string]*InstagramClient),
		timeout:   timeout,
	}
}

// Publish routes the upload to the right platform client.
func (r *Registry) Publish(ctx context.Context, req *Request) (*Result, error) {
	switch req.Platform {
	case domain.PlatformYouTube:
		client, err := r.youtubeFor(req.UnitID, req.YouTube)
		if err != nil {
			return nil, err
		}
		return client.Upload(ctx, req.FilePath, req.Title, req.Description, req.IsShort)
	case domain.PlatformInstagram:
		client, err := r.instagramFor(req.UnitID, req.Instagram)
		if err != nil {
			return nil, err
		}
		return client.UploadReel(ctx, req.FilePath, req.Title, req.Description)
	default:
		return nil, fmt.Errorf("unknown platform %q", req.Platform)
	}
}

// youtubeFor returns the cached client for the unit, constructing it on
// first use.
func (r *Registry) youtubeFor(unitID string, creds *domain.YouTubeCredentials) (*YouTubeClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client, ok := r.youtube[unitID]; ok {
		return client, nil
	}
	if creds == nil || !creds.Valid() {
		return nil, fmt.Errorf("missing YouTube credentials for %s", unitID)
	}
	client := NewYouTubeClient(creds, r.timeout)
	r.youtube[unitID] = client
	return client, nil
}

// instagramFor returns the cached client for the unit, constructing it on
// first use.
func (r *Registry) instagramFor(unitID string, creds *domain.InstagramCredentials) (*InstagramClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client, ok := r.instagram[unitID]; ok {
		return client, nil
	}
	if creds == nil || !creds.Valid() {
		return nil, fmt.Errorf("missing Instagram credentials for %s", unitID)
	}
	client := NewInstagramClient(creds, r.timeout)
	r.instagram[unitID] = client
	return client, nil
}
