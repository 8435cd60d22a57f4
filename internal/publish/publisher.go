package publish

import (
	"context"

	"github.com/timmy/autoposter/internal/domain"
)

// Request carries everything one upload needs, including the credentials
// resolved from the schedule config for the owning channel or account.
type Request struct {
	Platform    domain.Platform
	UnitID      string
	ChannelID   string
	AccountID   string
	FilePath    string
	Title       string
	Description string
	IsShort     bool

	YouTube   *domain.YouTubeCredentials
	Instagram *domain.InstagramCredentials
}

// Result identifies the published post.
type Result struct {
	PostID string
	URL    string
}

// Publisher uploads rendered assets to their platform. Implementations own
// the per-unit client lifecycle; the pipeline only consumes this contract.
type Publisher interface {
	Publish(ctx context.Context, req *Request) (*Result, error)
}
