package domain

import "time"

// PostStatus represents the lifecycle of one scheduled post.
// Values include PostStatusScheduled, PostStatusSuccess, and PostStatusError.
type PostStatus string

const (
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusSuccess   PostStatus = "success"
	PostStatusError     PostStatus = "error"
)

// Platform identifies the upload target of a post.
type Platform string

const (
	PlatformYouTube   Platform = "YouTube"
	PlatformInstagram Platform = "Instagram"
)

// ContentType identifies the rendered variant of a post.
type ContentType string

const (
	ContentTypeLong  ContentType = "long"
	ContentTypeShort ContentType = "short"
	ContentTypeReel  ContentType = "reel"
)

// PostRecord is one scheduled content item. It is created when rendering
// succeeds, mutated in place exactly once by the publish attempt, and never
// deleted.
type PostRecord struct {
	Platform      Platform    `json:"platform"`
	ContentType   ContentType `json:"content_type"`
	ChannelID     string      `json:"channel_id"`
	AccountID     string      `json:"account_id,omitempty"`
	Title         string      `json:"title"`
	ClipID        string      `json:"clip_id"`
	FilePath      string      `json:"file_path"`
	ScheduledTime string      `json:"scheduled_time"`
	ActualTime    string      `json:"actual_time,omitempty"`
	PostID        string      `json:"post_id,omitempty"`
	PostURL       string      `json:"post_url,omitempty"`
	Status        PostStatus  `json:"status"`
	Error         string      `json:"error,omitempty"`
	Day           DayKey      `json:"day"`
}

// RunLease is the advisory lock guarding against concurrent run-controller
// invocations. Best effort: it rides the same read-modify-write document as
// the rest of the tracking state, with no compare-and-swap underneath.
type RunLease struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the lease has lapsed at the given instant.
func (l *RunLease) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// TrackingState is the persisted root document recording day-processing
// progress and post history. It is owned exclusively by the run controller
// and written back to the blob store after every state-changing step.
type TrackingState struct {
	LastProcessedDay string                   `json:"last_processed_day,omitempty"`
	LastProcessedKey DayKey                   `json:"last_processed_key,omitempty"`
	LastRun          string                   `json:"last_run,omitempty"`
	Posts            map[string][]*PostRecord `json:"posts"`
	Chunked          ChunkCursor              `json:"chunked_processing"`
	Lease            *RunLease                `json:"run_lease,omitempty"`
}

// NewTrackingState returns an empty state ready for its first run.
func NewTrackingState() *TrackingState {
	return &TrackingState{
		Posts: make(map[string][]*PostRecord),
	}
}

// AppendPost records a new post under the given channel's history.
func (s *TrackingState) AppendPost(channelID string, rec *PostRecord) {
	if s.Posts == nil {
		s.Posts = make(map[string][]*PostRecord)
	}
	s.Posts[channelID] = append(s.Posts[channelID], rec)
}

// MaxRecordedDay scans all post records for the highest day key by numeric
// suffix. The second return is false when no parseable day has been recorded.
func (s *TrackingState) MaxRecordedDay() (DayKey, bool) {
	var max DayKey
	found := false
	for _, records := range s.Posts {
		for _, rec := range records {
			if _, ok := rec.Day.Ordinal(); !ok {
				continue
			}
			if !found || max.Before(rec.Day) {
				max = rec.Day
				found = true
			}
		}
	}
	return max, found
}
