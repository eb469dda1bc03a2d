package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/agrimeme/backend/internal/models"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *PostRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check post: %w", err)
	}
	return count > 0, nil
}

func (r *PostRepository) List(ctx context.Context, req PageRequest) (Page[models.Post], error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Post{}), req)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID int64, req PageRequest) (Page[models.Post], error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID), req)
}

func (r *PostRepository) list(ctx context.Context, q *gorm.DB, req PageRequest) (Page[models.Post], error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[models.Post]{}, fmt.Errorf("count posts: %w", err)
	}

	var posts []models.Post
	if total > int64(req.offset()) {
		if err := req.apply(q).Find(&posts).Error; err != nil {
			return Page[models.Post]{}, fmt.Errorf("list posts: %w", err)
		}
	}
	return NewPage(posts, req, total), nil
}

// Create stores a new post with zeroed counters.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	post.CommentCount = 0
	post.Votes = 0
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

// Delete removes the post together with its comments and votes.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("delete votes: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
