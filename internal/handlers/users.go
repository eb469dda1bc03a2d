package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

type UserPosts interface {
	ListByUser(ctx context.Context, userID int64, req repository.PageRequest) (repository.Page[models.Post], error)
}

type UserHandler struct {
	users UserStore
	posts UserPosts
}

func NewUserHandler(users UserStore, posts UserPosts) *UserHandler {
	return &UserHandler{users: users, posts: posts}
}

// GetUserProfile returns a user's public profile and a page of their posts
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	req, ok := pageRequest(c, postSortFields...)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	posts, err := h.posts.ListByUser(ctx, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"created_at": user.CreatedAt,
		},
		"posts": posts,
	})
}
