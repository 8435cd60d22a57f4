package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/autoposter/internal/api/middleware"
	"github.com/timmy/autoposter/internal/domain"
	"github.com/timmy/autoposter/internal/repository"
)

// PostsHandler serves the relational post archive for dashboards.
type PostsHandler struct {
	archive *repository.ArchiveRepository
}

// NewPostsHandler creates a posts handler.
// Parameters:
//   - archive: archive repository to query.
// Returns:
//   - *PostsHandler: handler instance.
func NewPostsHandler(archive *repository.ArchiveRepository) *PostsHandler {
	return &PostsHandler{archive: archive}
}

// List handles GET /api/v1/posts with optional channel, day, limit, and
// offset query parameters.
func (h *PostsHandler) List(c *gin.Context) {
	channelID := c.Query("channel")
	day := c.Query("day")

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	posts, err := h.archive.List(c.Request.Context(), channelID, day, limit, offset)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to list archived posts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"count":  len(posts),
		"limit":  limit,
		"offset": offset,
	})
}

// Stats handles GET /api/v1/posts/stats.
func (h *PostsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	success, err := h.archive.CountByStatus(ctx, domain.PostStatusSuccess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count posts"})
		return
	}
	failed, err := h.archive.CountByStatus(ctx, domain.PostStatusError)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count posts"})
		return
	}
	scheduled, err := h.archive.CountByStatus(ctx, domain.PostStatusScheduled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   success,
		"error":     failed,
		"scheduled": scheduled,
	})
}
