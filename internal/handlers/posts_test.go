package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/agrimeme/backend/internal/middleware"
	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

func postRouter(h *PostHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetIdentity(c, testCaller)
		c.Next()
	})
	r.GET("/api/posts", h.GetPosts)
	r.GET("/api/posts/:postId", h.GetPost)
	r.POST("/api/posts", h.CreatePost)
	r.DELETE("/api/posts/:postId", h.DeletePost)
	r.POST("/api/posts/:postId/vote", h.VotePost)
	return r
}

func TestCreatePost_StampsOwnerAndZeroCounters(t *testing.T) {
	posts := new(MockPostStore)
	posts.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.UserID == testCaller.UserID && p.Title == "hello" && p.CommentCount == 0 && p.Votes == 0
	})).Return(nil)
	h := NewPostHandler(posts, new(MockVoteStore), new(MockInvalidator))

	w := serve(postRouter(h), http.MethodPost, "/api/posts",
		`{"title":"hello","description":"d","image_url":"http://img/1.png"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"comment_count":0`)
	posts.AssertExpectations(t)
}

func TestCreatePost_TitleTooLong(t *testing.T) {
	posts := new(MockPostStore)
	h := NewPostHandler(posts, new(MockVoteStore), new(MockInvalidator))
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	w := serve(postRouter(h), http.MethodPost, "/api/posts",
		`{"title":"`+string(long)+`","description":"d","image_url":"u"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetPost_NotFound(t *testing.T) {
	posts := new(MockPostStore)
	posts.On("FindByID", mock.Anything, int64(7)).Return(nil, repository.ErrNotFound)
	h := NewPostHandler(posts, new(MockVoteStore), new(MockInvalidator))

	w := serve(postRouter(h), http.MethodGet, "/api/posts/7", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPosts_RejectsUnknownSort(t *testing.T) {
	posts := new(MockPostStore)
	h := NewPostHandler(posts, new(MockVoteStore), new(MockInvalidator))

	w := serve(postRouter(h), http.MethodGet, "/api/posts?sort=password", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePost_OnlyOwner(t *testing.T) {
	posts := new(MockPostStore)
	posts.On("FindByID", mock.Anything, int64(3)).Return(&models.Post{ID: 3, UserID: 99}, nil)
	h := NewPostHandler(posts, new(MockVoteStore), new(MockInvalidator))

	w := serve(postRouter(h), http.MethodDelete, "/api/posts/3", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePost_InvalidatesComments(t *testing.T) {
	posts := new(MockPostStore)
	posts.On("FindByID", mock.Anything, int64(3)).Return(&models.Post{ID: 3, UserID: testCaller.UserID}, nil)
	posts.On("Delete", mock.Anything, int64(3)).Return(nil)
	cache := new(MockInvalidator)
	cache.On("Invalidate", mock.Anything, int64(3)).Return()
	h := NewPostHandler(posts, new(MockVoteStore), cache)

	w := serve(postRouter(h), http.MethodDelete, "/api/posts/3", "")

	assert.Equal(t, http.StatusOK, w.Code)
	cache.AssertExpectations(t)
}

func TestVotePost(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		outcome    repository.VoteOutcome
		total      int64
		err        error
		wantStatus int
		wantBody   string
	}{
		{"upvote", `{"vote_type":1}`, repository.VoteRecorded, 1, nil, http.StatusOK, `"votes":1`},
		{"toggle off", `{"vote_type":1}`, repository.VoteRemoved, 0, nil, http.StatusOK, `"message":"Vote removed"`},
		{"switch", `{"vote_type":-1}`, repository.VoteUpdated, -1, nil, http.StatusOK, `"votes":-1`},
		{"missing post", `{"vote_type":1}`, "", 0, repository.ErrNotFound, http.StatusNotFound, `Post not found`},
		{"race", `{"vote_type":1}`, "", 0, repository.ErrConflict, http.StatusConflict, `retry`},
		{"bad type", `{"vote_type":2}`, "", 0, nil, http.StatusBadRequest, `Vote type must be -1 or 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			votes := new(MockVoteStore)
			votes.On("Cast", mock.Anything, testCaller.UserID, int64(4), mock.Anything).
				Return(tt.outcome, tt.total, tt.err)
			h := NewPostHandler(new(MockPostStore), votes, new(MockInvalidator))

			w := serve(postRouter(h), http.MethodPost, "/api/posts/4/vote", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
