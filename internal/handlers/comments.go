package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrimeme/backend/internal/auth"
	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

type CommentService interface {
	ListByPost(ctx context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], error)
	ListAll(ctx context.Context) ([]models.Comment, error)
	Create(ctx context.Context, caller auth.Identity, postID int64, text string) (*models.Comment, error)
	Update(ctx context.Context, caller auth.Identity, postID, commentID int64, text string) (*models.Comment, error)
	Delete(ctx context.Context, caller auth.Identity, postID, commentID int64) error
	Recount(ctx context.Context, caller auth.Identity, postID int64) (int64, error)
}

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// GetComments returns a page of a post's comments
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	req, ok := pageRequest(c, "created_at", "updated_at")
	if !ok {
		return
	}

	page, err := h.comments.ListByPost(c.Request.Context(), postID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetAllComments returns every comment, unpaginated
func (h *CommentHandler) GetAllComments(c *gin.Context) {
	comments, err := h.comments.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	id, ok := caller(c)
	if !ok {
		return
	}

	var input models.CommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), id, postID, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment replaces a comment's text
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}
	id, ok := caller(c)
	if !ok {
		return
	}

	var input models.CommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), id, postID, commentID, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment; the response body is empty
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}
	id, ok := caller(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), id, postID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// RecountComments rebuilds a post's comment_count (ROLE_ADMIN only)
func (h *CommentHandler) RecountComments(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	id, ok := caller(c)
	if !ok {
		return
	}

	count, err := h.comments.Recount(c.Request.Context(), id, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_id": postID, "comment_count": count})
}
