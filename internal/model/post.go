package model

import "time"

// Post 帖子，作者创建后不可变更
type Post struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"user_id" gorm:"index:idx_post_author;not null"`
	Content   string    `json:"content" gorm:"type:text"`
	Image     string    `json:"image" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_created"`
	UpdatedAt time.Time `json:"updated_at"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`

	// 查询时计算，不落库
	LikeCount int64 `json:"like_count" gorm:"-"`
	Liked     bool  `json:"liked" gorm:"-"`
}

func (Post) TableName() string { return "posts" }
