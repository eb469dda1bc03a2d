package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/agrimeme/backend/internal/models"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByPost returns one page of a post's comments. A missing post yields an
// empty page.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64, req PageRequest) (Page[models.Comment], error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[models.Comment]{}, fmt.Errorf("count comments: %w", err)
	}

	var comments []models.Comment
	if total > int64(req.offset()) {
		if err := req.apply(q).Find(&comments).Error; err != nil {
			return Page[models.Comment]{}, fmt.Errorf("list comments: %w", err)
		}
	}
	return NewPage(comments, req, total), nil
}

func (r *CommentRepository) ListAll(ctx context.Context) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.WithContext(ctx).Order("id asc").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list all comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *CommentRepository) FindByIDAndPostID(ctx context.Context, id, postID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", id, postID).First(&comment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// Create inserts the comment and bumps its post's comment_count in one
// transaction. ErrNotFound means the post row is gone.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := adjustCommentCount(tx, comment.PostID, 1); err != nil {
			return err
		}
		if err := tx.Omit("Post").Create(comment).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

// UpdateText writes only the text column.
func (r *CommentRepository) UpdateText(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(comment).Update("text", comment.Text)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the comment and decrements its post's comment_count in one
// transaction.
func (r *CommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Comment{}, comment.ID)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return adjustCommentCount(tx, comment.PostID, -1)
	})
}

// RecountComments resets a post's comment_count to the number of comment rows
// that reference it and returns the new value.
func (r *CommentRepository) RecountComments(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn("comment_count", count)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func adjustCommentCount(tx *gorm.DB, postID int64, delta int) error {
	expr := gorm.Expr("comment_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("GREATEST(comment_count + ?, 0)", delta)
	}
	res := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn("comment_count", expr)
	if res.Error != nil {
		return fmt.Errorf("adjust comment_count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
