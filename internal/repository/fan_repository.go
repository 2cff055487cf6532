package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialfeed/internal/model"
)

// FanRepository 反向边（粉丝表），粉丝数从这里读
type FanRepository interface {
	Create(ctx context.Context, profileID, fanID uint64) error
	Delete(ctx context.Context, profileID, fanID uint64) error
	Count(ctx context.Context, profileID uint64) (int64, error)
}

type fanRepository struct{ db *gorm.DB }

func NewFanRepository(db *gorm.DB) FanRepository { return &fanRepository{db: db} }

func (r *fanRepository) Create(ctx context.Context, profileID, fanID uint64) error {
	f := &model.Fan{ProfileID: profileID, FanID: fanID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *fanRepository) Delete(ctx context.Context, profileID, fanID uint64) error {
	return r.db.WithContext(ctx).Where("profile_id = ? AND fan_id = ?", profileID, fanID).Delete(&model.Fan{}).Error
}

func (r *fanRepository) Count(ctx context.Context, profileID uint64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Fan{}).Where("profile_id = ?", profileID).Count(&cnt).Error
	return cnt, err
}
