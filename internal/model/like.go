package model

import "time"

// Like 点赞关系，(user_id, post_id) 唯一
type Like struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index:idx_like_pair,unique"`
	PostID    uint64 `gorm:"index:idx_like_post;index:idx_like_pair,unique;not null"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }
