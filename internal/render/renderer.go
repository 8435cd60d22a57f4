package render

import (
	"context"

	"github.com/timmy/autoposter/internal/domain"
)

// Request describes one variant to compose: the clip, the CTA selections,
// the optional music track, and the already-resolved title.
type Request struct {
	ClipID         string             `json:"clip_id"`
	Variant        domain.ContentType `json:"variant"`
	Title          string             `json:"title"`
	TextCTA        string             `json:"text_cta"`
	VideoCTA       string             `json:"video_cta,omitempty"`
	DescriptionCTA string             `json:"description_cta,omitempty"`
	MusicTrack     string             `json:"music_track,omitempty"`
}

// Asset is the render service's answer: where the finished file lives and
// the final title/description to publish with.
type Asset struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Renderer composes platform-specific variants out of raw clips. Rendering
// happens in an external service; the pipeline only consumes this contract.
type Renderer interface {
	Render(ctx context.Context, req *Request) (*Asset, error)
}
