package models

import "time"

// Vote tracks an individual user's vote on a post. posts.votes holds the
// running sum of VoteType for the post.
type Vote struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_votes_user_post;not null" json:"user_id"`
	PostID    int64     `gorm:"uniqueIndex:idx_votes_user_post;not null" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	VoteType  int       `gorm:"not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	VoteType int `json:"vote_type" binding:"required,oneof=-1 1"`
}
