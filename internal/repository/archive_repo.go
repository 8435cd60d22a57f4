package repository

import (
	"context"

	"github.com/timmy/autoposter/internal/domain"
	"gorm.io/gorm"
)

// ArchiveRepository mirrors post records into the relational archive for
// dashboard queries. Archive writes are best effort: the tracking document
// stays the source of truth for resumability.
type ArchiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new ArchiveRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ArchiveRepository: repository instance bound to db.
func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Create inserts a new archive row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - post: archive row to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ArchiveRepository) Create(ctx context.Context, post *domain.ArchivedPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update saves an existing archive row after the publish attempt mutated it.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - post: archive row with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *ArchiveRepository) Update(ctx context.Context, post *domain.ArchivedPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// List retrieves archive rows with optional filters, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - channelID: filter by channel; empty means all.
//   - day: filter by day key; empty means all.
//   - limit: maximum number of rows to return.
//   - offset: number of rows to skip.
// Returns:
//   - []domain.ArchivedPost: matching rows.
//   - error: non-nil if the query fails.
func (r *ArchiveRepository) List(ctx context.Context, channelID, day string, limit, offset int) ([]domain.ArchivedPost, error) {
	var posts []domain.ArchivedPost
	query := r.db.WithContext(ctx)
	if channelID != "" {
		query = query.Where("channel_id = ?", channelID)
	}
	if day != "" {
		query = query.Where("day = ?", day)
	}
	if err := query.
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByStatus counts archive rows by status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: post status to count.
// Returns:
//   - int64: number of matching rows.
//   - error: non-nil if the query fails.
func (r *ArchiveRepository) CountByStatus(ctx context.Context, status domain.PostStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ArchivedPost{}).Where("status = ?", string(status)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
