package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
