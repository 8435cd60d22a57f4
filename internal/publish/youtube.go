package publish

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/autoposter/internal/domain"
)

const (
	youtubeTokenURL  = "https://oauth2.googleapis.com/token"
	youtubeUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos"
)

// YouTubeClient uploads videos for one channel using its OAuth refresh
// token. Access tokens are refreshed lazily and cached until shortly before
// expiry.
type YouTubeClient struct {
	client *resty.Client
	creds  domain.YouTubeCredentials

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewYouTubeClient creates an upload client for one channel.
func NewYouTubeClient(creds *domain.YouTubeCredentials, timeout time.Duration) *YouTubeClient {
	client := resty.New()
	client.SetTimeout(timeout)
	return &YouTubeClient{
		client: client,
		creds:  *creds,
	}
}

type youtubeTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// token returns a valid access token, refreshing it when needed.
func (c *YouTubeClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var out youtubeTokenResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     c.creds.ClientID,
			"client_secret": c.creds.ClientSecret,
			"refresh_token": c.creds.RefreshToken,
			"grant_type":    "refresh_token",
		}).
		SetResult(&out).
		Post(youtubeTokenURL)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	if resp.IsError() || out.AccessToken == "" {
		return "", fmt.Errorf("token refresh rejected: %s %s", out.Error, out.ErrorDesc)
	}

	c.accessToken = out.AccessToken
	// Renew a minute early
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

type youtubeSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Tags        []string `json:"tags,omitempty"`
}

type youtubeStatus struct {
	PrivacyStatus           string `json:"privacyStatus"`
	SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
}

type youtubeVideoBody struct {
	Snippet youtubeSnippet `json:"snippet"`
	Status  youtubeStatus  `json:"status"`
}

type youtubeUploadResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload publishes one video. Shorts get the #shorts tag; everything is
// uploaded public, category 22 (People & Blogs).
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filePath: local path of the rendered asset.
//   - title: video title.
//   - description: video description.
//   - isShort: true for vertical shorts.
// Returns:
//   - *Result: post id and watch URL on success.
//   - error: non-nil if the upload fails.
func (c *YouTubeClient) Upload(ctx context.Context, filePath, title, description string, isShort bool) (*Result, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body := youtubeVideoBody{
		Snippet: youtubeSnippet{
			Title:       title,
			Description: description,
			CategoryID:  "22",
		},
		Status: youtubeStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
		},
	}
	if isShort {
		body.Snippet.Tags = []string{"#shorts"}
	}

	// Start a resumable upload session
	var sessionResp *resty.Response
	sessionResp, err = c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"uploadType": "resumable",
			"part":       "snippet,status",
		}).
		SetHeader("X-Upload-Content-Type", "video/mp4").
		SetBody(body).
		Post(youtubeUploadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to start upload session: %w", err)
	}
	if sessionResp.IsError() {
		return nil, fmt.Errorf("upload session rejected: status %d", sessionResp.StatusCode())
	}
	uploadURL := sessionResp.Header().Get("Location")
	if uploadURL == "" {
		return nil, fmt.Errorf("upload session returned no location")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered asset %s: %w", filePath, err)
	}

	var out youtubeUploadResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "video/mp4").
		SetBody(data).
		SetResult(&out).
		Put(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if resp.IsError() || out.ID == "" {
		if out.Error != nil {
			return nil, fmt.Errorf("upload rejected: %s", out.Error.Message)
		}
		return nil, fmt.Errorf("upload rejected: status %d", resp.StatusCode())
	}

	return &Result{
		PostID: out.ID,
		URL:    "https://youtube.com/watch?v=" + out.ID,
	}, nil
}
