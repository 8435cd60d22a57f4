package render

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the render service over HTTP.
type Client struct {
	client   *resty.Client
	endpoint string
}

// ClientConfig holds configuration for the render service client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a render service client.
// Parameters:
//   - cfg: render service configuration.
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *ClientConfig) *Client {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		// Long-form composition can take minutes
		timeout = 5 * time.Minute
	}
	client.SetTimeout(timeout)

	return &Client{
		client:   client,
		endpoint: cfg.BaseURL + "/v1/render",
	}
}

type renderResponse struct {
	Asset *Asset `json:"asset"`
	Error string `json:"error,omitempty"`
}

// Render submits one composition job and waits for the finished asset.
func (c *Client) Render(ctx context.Context, req *Request) (*Asset, error) {
	var out renderResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	if resp.IsError() {
		if out.Error != "" {
			return nil, fmt.Errorf("render failed for clip %s: %s", req.ClipID, out.Error)
		}
		return nil, fmt.Errorf("render failed for clip %s: status %d", req.ClipID, resp.StatusCode())
	}
	if out.Asset == nil || out.Asset.Path == "" {
		return nil, fmt.Errorf("render returned no asset for clip %s", req.ClipID)
	}
	return out.Asset, nil
}
