package models

import "time"

type Post struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"index;not null" json:"user_id"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Description  string    `gorm:"size:250;not null" json:"description"`
	ImageURL     string    `gorm:"size:250;not null" json:"image_url"`
	CommentCount int64     `gorm:"not null;default:0" json:"comment_count"`
	Votes        int64     `gorm:"not null;default:0" json:"votes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"required,max=250"`
	ImageURL    string `json:"image_url" binding:"required,max=250"`
}
