package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfeed/internal/model"
)

type LikeRepository interface {
	Create(ctx context.Context, userID, postID uint64) error
	Delete(ctx context.Context, userID, postID uint64) (bool, error)
	Count(ctx context.Context, postID uint64) (int64, error)
	// CountByPosts 批量统计点赞数，没有点赞的帖子不出现在结果中
	CountByPosts(ctx context.Context, postIDs []uint64) (map[uint64]int64, error)
	// LikedPostIDs 返回 postIDs 中 userID 点过赞的集合
	LikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error)
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, userID, postID uint64) error {
	l := &model.Like{UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l).Error
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) Count(ctx context.Context, postID uint64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}

func (r *likeRepository) CountByPosts(ctx context.Context, postIDs []uint64) (map[uint64]int64, error) {
	res := make(map[uint64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return res, nil
	}
	var rows []struct {
		PostID uint64
		N      int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		res[row.PostID] = row.N
	}
	return res, nil
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error) {
	res := make(map[uint64]bool)
	if len(postIDs) == 0 {
		return res, nil
	}
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		res[id] = true
	}
	return res, nil
}
