package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfeed/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID uint64) error
	Delete(ctx context.Context, followerID, followeeID uint64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID uint64) (bool, error)
	CountFollowings(ctx context.Context, followerID uint64) (int64, error)
	ListFollowedUserIDs(ctx context.Context, followerID uint64) ([]uint64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID uint64) error {
	f := &model.Follow{FollowerID: followerID, FolloweeID: followeeID}
	// 幂等：重复关注不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

// Delete 返回是否确实删除了一条边
func (r *followRepository) Delete(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) CountFollowings(ctx context.Context, followerID uint64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, err
}

// ListFollowedUserIDs 返回 follower 关注的 profile 对应的 user id
func (r *followRepository) ListFollowedUserIDs(ctx context.Context, followerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("profiles.user_id").
		Joins("JOIN profiles ON profiles.id = follows.followee_id").
		Where("follows.follower_id = ?", followerID).
		Scan(&ids).Error
	return ids, err
}
