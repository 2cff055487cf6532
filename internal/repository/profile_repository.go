package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error)
	// Update 只更新 bio 与 image
	Update(ctx context.Context, profile *model.Profile) error
}

type profileRepository struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &profileRepository{db: db} }

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{"bio": profile.Bio, "image": profile.Image}).Error
}
