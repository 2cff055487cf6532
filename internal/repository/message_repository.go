package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListThread 返回 a、b 之间双向的全部消息，按时间升序
	ListThread(ctx context.Context, a, b uint64) ([]*model.Message, error)
	// ListInvolving 返回 userID 收发的全部消息，最新的在前
	ListInvolving(ctx context.Context, userID uint64) ([]*model.Message, error)
}

type messageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) MessageRepository { return &messageRepository{db: db} }

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListThread(ctx context.Context, a, b uint64) ([]*model.Message, error) {
	var msgs []*model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) ListInvolving(ctx context.Context, userID uint64) ([]*model.Message, error) {
	var msgs []*model.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	return msgs, err
}
