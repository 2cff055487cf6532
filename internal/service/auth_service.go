package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// AuthService 注册与登录
type AuthService interface {
	// Signup 在同一事务内创建 User 与 Profile
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Authenticate(ctx context.Context, in LoginInput) (*model.User, error)
}

type authService struct {
	repos      *repository.Repositories
	bcryptCost int
	// 用户不存在时也执行一次比较，避免通过耗时区分用户名是否存在
	dummyHash []byte
}

func NewAuthService(repos *repository.Repositories, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), bcryptCost)
	return &authService{repos: repos, bcryptCost: bcryptCost, dummyHash: dummy}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Username: in.Username, Password: string(hash)}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		taken, err := tx.Users.UsernameTaken(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return newValidationError("username", "A user with that username already exists.")
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		return tx.Profiles.Create(ctx, &model.Profile{UserID: user.ID})
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user signed up", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, in LoginInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
