package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 一组绑定到同一 *gorm.DB（或同一事务）的仓储
type Repositories struct {
	db *gorm.DB

	Users    UserRepository
	Profiles ProfileRepository
	Follows  FollowRepository
	Fans     FanRepository
	Posts    PostRepository
	Likes    LikeRepository
	Comments CommentRepository
	Messages MessageRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:       db,
		Users:    NewUserRepository(db),
		Profiles: NewProfileRepository(db),
		Follows:  NewFollowRepository(db),
		Fans:     NewFanRepository(db),
		Posts:    NewPostRepository(db),
		Likes:    NewLikeRepository(db),
		Comments: NewCommentRepository(db),
		Messages: NewMessageRepository(db),
	}
}

// Transaction 在一个事务内执行 fn，fn 内只能使用参数 tx 中的仓储
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// Ping 检查数据库连通性
func (r *Repositories) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
