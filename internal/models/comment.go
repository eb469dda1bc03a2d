package models

import "time"

// Comment is a reply attached to exactly one post. UserID and Username are
// copied from the author at creation time.
type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PostID    int64     `gorm:"index;not null" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Text      string    `gorm:"size:1000;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}
