package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// LikeState 点赞切换后的状态
type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// FollowState 关注切换后的状态，Count 为目标的粉丝数
type FollowState struct {
	Following bool  `json:"following"`
	Count     int64 `json:"count"`
}

// SocialService 点赞/关注切换
// 单步实现：先删除边，未删除则插入（ON CONFLICT DO NOTHING），再计数
type SocialService interface {
	ToggleLike(ctx context.Context, userID, postID uint64) (LikeState, error)
	ToggleFollow(ctx context.Context, userID uint64, username string) (FollowState, error)
}

type socialService struct {
	repos *repository.Repositories
	stats *cache.StatsCache
}

func NewSocialService(repos *repository.Repositories, stats *cache.StatsCache) SocialService {
	return &socialService{repos: repos, stats: stats}
}

func (s *socialService) ToggleLike(ctx context.Context, userID, postID uint64) (LikeState, error) {
	var state LikeState
	if _, err := s.repos.Posts.GetByID(ctx, postID); err != nil {
		return state, lookupErr(err, "post")
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		removed, err := tx.Likes.Delete(ctx, userID, postID)
		if err != nil {
			return err
		}
		if !removed {
			if err := tx.Likes.Create(ctx, userID, postID); err != nil {
				return err
			}
		}
		state.Liked = !removed
		state.Count, err = tx.Likes.Count(ctx, postID)
		return err
	})
	if err != nil {
		return LikeState{}, fmt.Errorf("toggle like: %w", err)
	}
	return state, nil
}

func (s *socialService) ToggleFollow(ctx context.Context, userID uint64, username string) (FollowState, error) {
	var state FollowState

	target, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return state, lookupErr(err, "user")
	}
	if target.ID == userID {
		return state, ErrFollowSelf
	}
	me, err := s.repos.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return state, lookupErr(err, "profile")
	}
	them, err := s.repos.Profiles.GetByUserID(ctx, target.ID)
	if err != nil {
		return state, lookupErr(err, "profile")
	}

	// 关注边与粉丝边同事务写入
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		removed, err := tx.Follows.Delete(ctx, me.ID, them.ID)
		if err != nil {
			return err
		}
		if removed {
			if err := tx.Fans.Delete(ctx, them.ID, me.ID); err != nil {
				return err
			}
		} else {
			if err := tx.Follows.Create(ctx, me.ID, them.ID); err != nil {
				return err
			}
			if err := tx.Fans.Create(ctx, them.ID, me.ID); err != nil {
				return err
			}
		}
		state.Following = !removed
		state.Count, err = tx.Fans.Count(ctx, them.ID)
		return err
	})
	if err != nil {
		return FollowState{}, fmt.Errorf("toggle follow: %w", err)
	}

	s.stats.Invalidate(ctx, me.ID, them.ID)
	logger.Debug("follow toggled",
		zap.Uint64("follower", me.ID), zap.Uint64("followee", them.ID), zap.Bool("following", state.Following))
	return state, nil
}
