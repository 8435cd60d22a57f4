package domain

import "time"

// ArchivedPost mirrors one PostRecord into the relational archive so the
// dashboard can query history without pulling the whole tracking document.
type ArchivedPost struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID         string    `gorm:"type:text;index:idx_archived_posts_run" json:"run_id"`
	Platform      string    `gorm:"type:text" json:"platform"`
	ContentType   string    `gorm:"type:text" json:"content_type"`
	ChannelID     string    `gorm:"type:text;index:idx_archived_posts_channel" json:"channel_id"`
	AccountID     string    `gorm:"type:text" json:"account_id,omitempty"`
	Title         string    `gorm:"type:text" json:"title"`
	ClipID        string    `gorm:"type:text" json:"clip_id"`
	FilePath      string    `gorm:"type:text" json:"file_path"`
	ScheduledTime string    `gorm:"type:text" json:"scheduled_time"`
	ActualTime    string    `gorm:"type:text" json:"actual_time,omitempty"`
	PostID        string    `gorm:"type:text" json:"post_id,omitempty"`
	PostURL       string    `gorm:"type:text" json:"post_url,omitempty"`
	Status        string    `gorm:"type:text;index:idx_archived_posts_status" json:"status"`
	Error         string    `gorm:"type:text" json:"error,omitempty"`
	Day           string    `gorm:"type:text;index:idx_archived_posts_day" json:"day"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for ArchivedPost.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ArchivedPost) TableName() string {
	return "archived_posts"
}

// ArchiveFromRecord flattens a PostRecord into an archive row for the run.
func ArchiveFromRecord(runID string, rec *PostRecord) *ArchivedPost {
	return &ArchivedPost{
		RunID:         runID,
		Platform:      string(rec.Platform),
		ContentType:   string(rec.ContentType),
		ChannelID:     rec.ChannelID,
		AccountID:     rec.AccountID,
		Title:         rec.Title,
		ClipID:        rec.ClipID,
		FilePath:      rec.FilePath,
		ScheduledTime: rec.ScheduledTime,
		ActualTime:    rec.ActualTime,
		PostID:        rec.PostID,
		PostURL:       rec.PostURL,
		Status:        string(rec.Status),
		Error:         rec.Error,
		Day:           string(rec.Day),
	}
}
