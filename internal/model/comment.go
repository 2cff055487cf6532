package model

import "time"

type Comment struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    uint64    `json:"post_id" gorm:"index:idx_comment_post;not null"`
	UserID    uint64    `json:"user_id" gorm:"not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Comment) TableName() string { return "comments" }
