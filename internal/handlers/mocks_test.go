package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/agrimeme/backend/internal/auth"
	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) ListByPost(ctx context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], error) {
	args := m.Called(ctx, postID, req)
	return args.Get(0).(repository.Page[models.Comment]), args.Error(1)
}

func (m *MockCommentService) ListAll(ctx context.Context) ([]models.Comment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, caller auth.Identity, postID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, caller, postID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, caller auth.Identity, postID, commentID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, caller, postID, commentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, caller auth.Identity, postID, commentID int64) error {
	args := m.Called(ctx, caller, postID, commentID)
	return args.Error(0)
}

func (m *MockCommentService) Recount(ctx context.Context, caller auth.Identity, postID int64) (int64, error) {
	args := m.Called(ctx, caller, postID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostStore) List(ctx context.Context, req repository.PageRequest) (repository.Page[models.Post], error) {
	args := m.Called(ctx, req)
	return args.Get(0).(repository.Page[models.Post]), args.Error(1)
}

func (m *MockPostStore) ListByUser(ctx context.Context, userID int64, req repository.PageRequest) (repository.Page[models.Post], error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(repository.Page[models.Post]), args.Error(1)
}

func (m *MockPostStore) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockVoteStore struct {
	mock.Mock
}

func (m *MockVoteStore) Cast(ctx context.Context, userID, postID int64, voteType int) (repository.VoteOutcome, int64, error) {
	args := m.Called(ctx, userID, postID, voteType)
	return args.Get(0).(repository.VoteOutcome), args.Get(1).(int64), args.Error(2)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, postID int64) {
	m.Called(ctx, postID)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(id auth.Identity) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}
