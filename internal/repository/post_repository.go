package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint64) (*model.Post, error)
	// ListByAuthors 按 created_at DESC, id DESC 返回作者集合的帖子（含作者与评论）
	ListByAuthors(ctx context.Context, userIDs []uint64) ([]*model.Post, error)
	// Delete 同一事务内删除帖子及其点赞、评论
	Delete(ctx context.Context, id uint64) error
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListByAuthors(ctx context.Context, userIDs []uint64) ([]*model.Post, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}
