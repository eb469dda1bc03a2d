// Package comments implements the comment operations and keeps each post's
// comment_count in step with its comment rows.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/agrimeme/backend/internal/apperrors"
	"github.com/agrimeme/backend/internal/auth"
	"github.com/agrimeme/backend/internal/events"
	"github.com/agrimeme/backend/internal/metrics"
	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

type Store interface {
	ListByPost(ctx context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], error)
	ListAll(ctx context.Context) ([]models.Comment, error)
	FindByID(ctx context.Context, id int64) (*models.Comment, error)
	FindByIDAndPostID(ctx context.Context, id, postID int64) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	UpdateText(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, comment *models.Comment) error
	RecountComments(ctx context.Context, postID int64) (int64, error)
}

type PostFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Cache holds read results. Reads return the cache version they saw; a store
// is only visible to later reads if no Invalidate ran since that version was
// read, so a list loaded before a write never outlives the write. A negative
// version means the cache is unavailable and the store is skipped.
// Implementations swallow their own failures; a miss is always safe.
type Cache interface {
	PostPage(ctx context.Context, postID int64, req repository.PageRequest) (page repository.Page[models.Comment], version int64, ok bool)
	StorePostPage(ctx context.Context, postID, version int64, req repository.PageRequest, page repository.Page[models.Comment])
	All(ctx context.Context) (comments []models.Comment, version int64, ok bool)
	StoreAll(ctx context.Context, version int64, comments []models.Comment)
	Invalidate(ctx context.Context, postID int64)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	store     Store
	posts     PostFinder
	users     UserFinder
	policy    Policy
	cache     Cache
	publisher Publisher
	now       func() time.Time
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

func NewService(store Store, posts PostFinder, users UserFinder, policy Policy, opts ...Option) *Service {
	s := &Service{
		store:     store,
		posts:     posts,
		users:     users,
		policy:    policy,
		cache:     NopCache{},
		publisher: events.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListByPost does not check that the post exists.
func (s *Service) ListByPost(ctx context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], error) {
	page, version, ok := s.cache.PostPage(ctx, postID, req)
	if ok {
		return page, nil
	}
	page, err := s.store.ListByPost(ctx, postID, req)
	if err != nil {
		return repository.Page[models.Comment]{}, err
	}
	s.cache.StorePostPage(ctx, postID, version, req, page)
	return page, nil
}

func (s *Service) ListAll(ctx context.Context) ([]models.Comment, error) {
	comments, version, ok := s.cache.All(ctx)
	if ok {
		return comments, nil
	}
	comments, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.StoreAll(ctx, version, comments)
	return comments, nil
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, postID int64, text string) (comment *models.Comment, err error) {
	defer func() { metrics.ObserveCommentOp(string(ActionCreate), err) }()

	if err := s.authorize(caller, ActionCreate, nil); err != nil {
		return nil, err
	}

	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "PostId %d not found", postID)
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, notFoundOr(err, "Invalid User id: %d", caller.UserID)
	}

	comment = &models.Comment{
		PostID:   postID,
		UserID:   user.ID,
		Username: user.Username,
		Text:     text,
	}
	if err := s.store.Create(ctx, comment); err != nil {
		return nil, notFoundOr(err, "PostId %d not found", postID)
	}

	s.afterWrite(ctx, events.CommentCreated, comment)
	return comment, nil
}

// Update replaces the comment text and nothing else.
func (s *Service) Update(ctx context.Context, caller auth.Identity, postID, commentID int64, text string) (comment *models.Comment, err error) {
	defer func() { metrics.ObserveCommentOp(string(ActionUpdate), err) }()

	if caller.UserID <= 0 {
		return nil, apperrors.Unauthenticated("User not authenticated")
	}

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post %d: %w", postID, err)
	}
	if !exists {
		return nil, apperrors.NotFound("PostId %d not found", postID)
	}

	comment, err = s.store.FindByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "CommentId %d not found", commentID)
	}
	if err := s.authorize(caller, ActionUpdate, comment); err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.store.UpdateText(ctx, comment); err != nil {
		return nil, notFoundOr(err, "CommentId %d not found", commentID)
	}

	s.afterWrite(ctx, events.CommentUpdated, comment)
	return comment, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Identity, postID, commentID int64) (err error) {
	defer func() { metrics.ObserveCommentOp(string(ActionDelete), err) }()

	if caller.UserID <= 0 {
		return apperrors.Unauthenticated("User not authenticated")
	}

	comment, err := s.store.FindByIDAndPostID(ctx, commentID, postID)
	if err != nil {
		return notFoundOr(err, "Comment not found with id %d and postId %d", commentID, postID)
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return notFoundOr(err, "Invalid Post id: %d", postID)
	}
	if err := s.authorize(caller, ActionDelete, comment); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, comment); err != nil {
		return notFoundOr(err, "Comment not found with id %d and postId %d", commentID, postID)
	}

	s.afterWrite(ctx, events.CommentDeleted, comment)
	return nil
}

// Recount rebuilds a post's comment_count from its comment rows and returns
// the new value. Only ROLE_ADMIN may run it.
func (s *Service) Recount(ctx context.Context, caller auth.Identity, postID int64) (count int64, err error) {
	defer func() { metrics.ObserveCommentOp("recount", err) }()

	if caller.UserID <= 0 {
		return 0, apperrors.Unauthenticated("User not authenticated")
	}
	if !caller.HasRole(models.RoleAdmin) {
		return 0, apperrors.Forbidden("Access Denied")
	}

	count, err = s.store.RecountComments(ctx, postID)
	if err != nil {
		return 0, notFoundOr(err, "PostId %d not found", postID)
	}
	s.cache.Invalidate(ctx, postID)
	return count, nil
}

func (s *Service) authorize(caller auth.Identity, action Action, comment *models.Comment) error {
	if caller.UserID <= 0 {
		return apperrors.Unauthenticated("User not authenticated")
	}
	return s.policy.Authorize(caller, action, comment)
}

// afterWrite drops cached lists and announces the change. Failures here are
// logged only; the write is already committed.
func (s *Service) afterWrite(ctx context.Context, kind events.Kind, comment *models.Comment) {
	s.cache.Invalidate(ctx, comment.PostID)

	event := events.Event{
		Kind:       kind,
		CommentID:  comment.ID,
		PostID:     comment.PostID,
		UserID:     comment.UserID,
		Username:   comment.Username,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish %s for comment %d: %v", kind, comment.ID, err)
	}
}

// notFoundOr turns repository.ErrNotFound into an apperrors NotFound with the
// given message and wraps anything else.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(format, args...)
	}
	return fmt.Errorf("comments: %w", err)
}

// NopCache never hits. Used when Redis is not configured.
type NopCache struct{}

func (NopCache) PostPage(context.Context, int64, repository.PageRequest) (repository.Page[models.Comment], int64, bool) {
	return repository.Page[models.Comment]{}, -1, false
}
func (NopCache) StorePostPage(context.Context, int64, int64, repository.PageRequest, repository.Page[models.Comment]) {
}
func (NopCache) All(context.Context) ([]models.Comment, int64, bool) { return nil, -1, false }
func (NopCache) StoreAll(context.Context, int64, []models.Comment) {}
func (NopCache) Invalidate(context.Context, int64) {}
