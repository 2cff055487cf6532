package model

import (
	"time"
)

// Follow 关注关系（profile A 关注 profile B），有向
type Follow struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	FollowerID uint64 `gorm:"index:idx_follow_follower;index:idx_follow_pair,unique;not null"`
	FolloweeID uint64 `gorm:"not null;index:idx_follow_pair,unique"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (follower_id, followee_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
