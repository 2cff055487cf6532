package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// FeedService 首页时间线与帖子/评论写操作
type FeedService interface {
	// Feed 返回自己与关注者的帖子，去重，按 created_at DESC, id DESC
	Feed(ctx context.Context, userID uint64) ([]*model.Post, error)
	CreatePost(ctx context.Context, userID uint64, in PostInput, image *multipart.FileHeader) (*model.Post, error)
	AddComment(ctx context.Context, userID, postID uint64, in CommentInput) (*model.Comment, error)
	// DeletePost 非作者返回 ErrForbidden，数据不变
	DeletePost(ctx context.Context, userID, postID uint64) error
}

type feedService struct {
	repos   *repository.Repositories
	storage media.Storage
}

func NewFeedService(repos *repository.Repositories, storage media.Storage) FeedService {
	return &feedService{repos: repos, storage: storage}
}

func (s *feedService) Feed(ctx context.Context, userID uint64) ([]*model.Post, error) {
	profile, err := s.repos.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}
	followed, err := s.repos.Follows.ListFollowedUserIDs(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list followed: %w", err)
	}

	// 两个谓词分别查询，再显式合并去重
	fromFollowed, err := s.repos.Posts.ListByAuthors(ctx, followed)
	if err != nil {
		return nil, fmt.Errorf("list followed posts: %w", err)
	}
	own, err := s.repos.Posts.ListByAuthors(ctx, []uint64{userID})
	if err != nil {
		return nil, fmt.Errorf("list own posts: %w", err)
	}
	posts := mergePosts(fromFollowed, own)

	if err := decoratePosts(ctx, s.repos.Likes, userID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// mergePosts 按 id 去重后按 created_at DESC, id DESC 排序
func mergePosts(lists ...[]*model.Post) []*model.Post {
	seen := make(map[uint64]struct{})
	var out []*model.Post
	for _, list := range lists {
		for _, p := range list {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// decoratePosts 填充 LikeCount 与 viewer 的 Liked
func decoratePosts(ctx context.Context, likes repository.LikeRepository, viewerID uint64, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := likes.CountByPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("count likes: %w", err)
	}
	liked, err := likes.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return fmt.Errorf("load liked: %w", err)
	}
	for _, p := range posts {
		p.LikeCount = counts[p.ID]
		p.Liked = liked[p.ID]
	}
	return nil
}

func (s *feedService) CreatePost(ctx context.Context, userID uint64, in PostInput, image *multipart.FileHeader) (*model.Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Content == "" && image == nil {
		return nil, newValidationError("content", "Write something or attach an image.")
	}

	post := &model.Post{UserID: userID, Content: in.Content}
	if image != nil {
		stored, err := saveUpload(s.storage, media.KindPost, "image", image)
		if err != nil {
			return nil, err
		}
		post.Image = stored
	}

	if err := s.repos.Posts.Create(ctx, post); err != nil {
		if post.Image != "" {
			_ = s.storage.Delete(post.Image)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *feedService) AddComment(ctx context.Context, userID, postID uint64, in CommentInput) (*model.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.repos.Posts.GetByID(ctx, postID); err != nil {
		return nil, lookupErr(err, "post")
	}
	c := &model.Comment{PostID: postID, UserID: userID, Text: in.Text}
	if err := s.repos.Comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

func (s *feedService) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return lookupErr(err, "post")
	}
	if post.UserID != userID {
		logger.Warn("delete post by non-owner rejected",
			zap.Uint64("post_id", postID), zap.Uint64("user_id", userID))
		return fmt.Errorf("delete post %d: %w", postID, ErrForbidden)
	}
	if err := s.repos.Posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if err := s.storage.Delete(post.Image); err != nil {
		logger.Warn("remove post image failed", zap.String("path", post.Image), zap.Error(err))
	}
	return nil
}

// saveUpload 存储上传文件，存储层的拒绝原因转换为字段错误
func saveUpload(storage media.Storage, kind media.Kind, field string, fh *multipart.FileHeader) (string, error) {
	stored, err := storage.Save(kind, fh)
	switch {
	case err == nil:
		return stored, nil
	case errors.Is(err, media.ErrTooLarge):
		return "", newValidationError(field, "File is too large.")
	case errors.Is(err, media.ErrUnsupportedType):
		return "", newValidationError(field, "Upload a valid image.")
	default:
		return "", fmt.Errorf("store upload: %w", err)
	}
}
