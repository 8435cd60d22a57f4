package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/autoposter/internal/domain"
)

const instagramBaseURL = "https://i.instagram.com/api/v1"

// InstagramClient uploads reels for one account. Login happens lazily on
// the first upload and the session cookie is reused afterwards.
type InstagramClient struct {
	client *resty.Client
	creds  domain.InstagramCredentials

	mu       sync.Mutex
	loggedIn bool
}

// NewInstagramClient creates an upload client for one account.
func NewInstagramClient(creds *domain.InstagramCredentials, timeout time.Duration) *InstagramClient {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetBaseURL(instagramBaseURL)
	return &InstagramClient{
		client: client,
		creds:  *creds,
	}
}

type instagramLoginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// login establishes a session; resty's cookie jar keeps it for reuse.
func (c *InstagramClient) login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loggedIn {
		return nil
	}

	var out instagramLoginResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": c.creds.Username,
			"password": c.creds.Password,
		}).
		SetResult(&out).
		Post("/accounts/login/")
	if err != nil {
		return fmt.Errorf("instagram login failed: %w", err)
	}
	if resp.IsError() || out.Status != "ok" {
		return fmt.Errorf("instagram login rejected for %s: %s", c.creds.Username, out.Message)
	}

	c.loggedIn = true
	return nil
}

type instagramMediaResponse struct {
	Status string `json:"status"`
	Media  struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	} `json:"media"`
	Message string `json:"message,omitempty"`
}

// UploadReel publishes one rendered reel. The caption combines the
// description CTA and the title, description first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filePath: local path of the rendered asset.
//   - title: reel title.
//   - description: description CTA text.
// Returns:
//   - *Result: media id and post URL on success.
//   - error: non-nil if the upload fails.
func (c *InstagramClient) UploadReel(ctx context.Context, filePath, title, description string) (*Result, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}

	caption := title
	if description != "" {
		caption = description + "\n\n" + title
	}

	var out instagramMediaResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFile("video", filePath).
		SetFormData(map[string]string{
			"caption":  caption,
			"to_reel":  "1",
			"username": c.creds.Username,
		}).
		SetResult(&out).
		Post("/media/upload/")
	if err != nil {
		return nil, fmt.Errorf("reel upload failed: %w", err)
	}
	if resp.IsError() || out.Status != "ok" {
		return nil, fmt.Errorf("reel upload rejected: %s", out.Message)
	}

	return &Result{
		PostID: out.Media.ID,
		URL:    "https://instagram.com/p/" + out.Media.Code,
	}, nil
}
