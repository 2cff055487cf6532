package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// ProfileView 个人主页所需的全部数据
type ProfileView struct {
	User        *model.User
	Profile     *model.Profile
	Posts       []*model.Post
	IsFollowing bool
	IsSelf      bool
	Followers   int64
	Following   int64
}

type ProfileService interface {
	GetProfile(ctx context.Context, viewerID uint64, username string) (*ProfileView, error)
	GetOwnProfile(ctx context.Context, userID uint64) (*model.Profile, error)
	// UpdateProfile image 为 nil 时保留原头像
	UpdateProfile(ctx context.Context, userID uint64, in ProfileInput, image *multipart.FileHeader) (*model.Profile, error)
}

type profileService struct {
	repos   *repository.Repositories
	stats   *cache.StatsCache
	storage media.Storage
}

func NewProfileService(repos *repository.Repositories, stats *cache.StatsCache, storage media.Storage) ProfileService {
	return &profileService{repos: repos, stats: stats, storage: storage}
}

func (s *profileService) GetProfile(ctx context.Context, viewerID uint64, username string) (*ProfileView, error) {
	user, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	profile, err := s.repos.Profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}
	viewer, err := s.repos.Profiles.GetByUserID(ctx, viewerID)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}

	view := &ProfileView{User: user, Profile: profile, IsSelf: user.ID == viewerID}
	if !view.IsSelf {
		if view.IsFollowing, err = s.repos.Follows.Exists(ctx, viewer.ID, profile.ID); err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
	}

	stats, err := s.profileStats(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	view.Followers, view.Following = stats.Followers, stats.Following

	if view.Posts, err = s.repos.Posts.ListByAuthors(ctx, []uint64{user.ID}); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := decoratePosts(ctx, s.repos.Likes, viewerID, view.Posts); err != nil {
		return nil, err
	}
	return view, nil
}

// profileStats 优先读缓存，未命中时回源并按版本回填
func (s *profileService) profileStats(ctx context.Context, profileID uint64) (cache.ProfileStats, error) {
	if stats, ok := s.stats.Get(ctx, profileID); ok {
		return stats, nil
	}
	version := s.stats.Version(ctx, profileID)
	var (
		stats cache.ProfileStats
		err   error
	)
	if stats.Followers, err = s.repos.Fans.Count(ctx, profileID); err != nil {
		return stats, fmt.Errorf("count followers: %w", err)
	}
	if stats.Following, err = s.repos.Follows.CountFollowings(ctx, profileID); err != nil {
		return stats, fmt.Errorf("count followings: %w", err)
	}
	s.stats.Set(ctx, profileID, version, stats)
	return stats, nil
}

func (s *profileService) GetOwnProfile(ctx context.Context, userID uint64) (*model.Profile, error) {
	profile, err := s.repos.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uint64, in ProfileInput, image *multipart.FileHeader) (*model.Profile, error) {
	in.Bio = strings.TrimSpace(in.Bio)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	profile, err := s.repos.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}

	oldImage := profile.Image
	profile.Bio = in.Bio
	if image != nil {
		stored, err := saveUpload(s.storage, media.KindProfile, "image", image)
		if err != nil {
			return nil, err
		}
		profile.Image = stored
	}

	if err := s.repos.Profiles.Update(ctx, profile); err != nil {
		if profile.Image != oldImage {
			_ = s.storage.Delete(profile.Image)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if profile.Image != oldImage {
		if err := s.storage.Delete(oldImage); err != nil {
			logger.Warn("remove old profile image failed", zap.String("path", oldImage), zap.Error(err))
		}
	}
	return profile, nil
}
