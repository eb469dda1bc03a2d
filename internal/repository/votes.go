package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrimeme/backend/internal/models"
)

type VoteOutcome string

const (
	VoteRecorded VoteOutcome = "recorded"
	VoteUpdated  VoteOutcome = "updated"
	VoteRemoved  VoteOutcome = "removed"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast applies a user's vote on a post. Repeating the same vote removes it,
// the opposite vote switches it. posts.votes moves by the same delta inside
// the transaction. It returns the outcome and the post's new vote total.
func (r *VoteRepository) Cast(ctx context.Context, userID, postID int64, voteType int) (VoteOutcome, int64, error) {
	var (
		outcome VoteOutcome
		total   int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
			return err
		}

		var existing models.Vote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		delta := 0
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: userID, PostID: postID, VoteType: voteType}
			if err := tx.Omit("Post").Create(&vote).Error; err != nil {
				return err
			}
			delta, outcome = voteType, VoteRecorded
		case err != nil:
			return err
		case existing.VoteType == voteType:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			delta, outcome = -voteType, VoteRemoved
		default:
			delta, outcome = voteType-existing.VoteType, VoteUpdated
			if err := tx.Model(&existing).Update("vote_type", voteType).Error; err != nil {
				return err
			}
		}

		before := post.Votes
		err = tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error
		if err != nil {
			return err
		}
		total = before + int64(delta)
		return nil
	})
	if err != nil {
		return "", 0, translate(err)
	}
	return outcome, total, nil
}
