package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

type PostStore interface {
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, req repository.PageRequest) (repository.Page[models.Post], error)
	Create(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
}

type VoteStore interface {
	Cast(ctx context.Context, userID, postID int64, voteType int) (repository.VoteOutcome, int64, error)
}

// CommentInvalidator drops cached comment lists for a post.
type CommentInvalidator interface {
	Invalidate(ctx context.Context, postID int64)
}

type PostHandler struct {
	posts    PostStore
	votes    VoteStore
	comments CommentInvalidator
}

func NewPostHandler(posts PostStore, votes VoteStore, comments CommentInvalidator) *PostHandler {
	return &PostHandler{posts: posts, votes: votes, comments: comments}
}

var postSortFields = []string{"created_at", "updated_at", "votes", "comment_count"}

func (h *PostHandler) GetPosts(c *gin.Context) {
	req, ok := pageRequest(c, postSortFields...)
	if !ok {
		return
	}

	page, err := h.posts.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}

	post, err := h.posts.FindByID(c.Request.Context(), postID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		UserID:      id.UserID,
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := h.posts.Create(c.Request.Context(), &post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post with its comments and votes (PROTECTED - requires ownership)
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	id, ok := caller(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	post, err := h.posts.FindByID(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if post.UserID != id.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	if err := h.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		respondError(c, err)
		return
	}
	h.comments.Invalidate(ctx, postID)

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// VotePost handles upvoting/downvoting a post (PROTECTED - requires authentication)
func (h *PostHandler) VotePost(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	id, ok := caller(c)
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be -1 or 1"})
		return
	}

	outcome, total, err := h.votes.Cast(c.Request.Context(), id.UserID, postID, input.VoteType)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Vote already in progress, retry"})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote " + string(outcome), "votes": total})
}
