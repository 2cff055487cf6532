package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	// GetByUsername 精确匹配
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UsernameTaken 忽略大小写判断用户名是否已被占用
	UsernameTaken(ctx context.Context, username string) (bool, error)
	// ListByIDs 结果顺序不保证
	ListByIDs(ctx context.Context, ids []uint64) ([]*model.User, error)
	// SearchByUsername 忽略大小写的子串匹配，按用户名排序
	SearchByUsername(ctx context.Context, query string) ([]*model.User, error)
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []uint64) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*model.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) SearchByUsername(ctx context.Context, query string) ([]*model.User, error) {
	var users []*model.User
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '\\'", pattern).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
