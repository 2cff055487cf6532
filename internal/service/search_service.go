package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
)

type SearchService interface {
	// Search 用户名大小写不敏感子串匹配，空查询返回空结果
	Search(ctx context.Context, query string) ([]*model.User, error)
}

type searchService struct {
	users repository.UserRepository
}

func NewSearchService(users repository.UserRepository) SearchService {
	return &searchService{users: users}
}

func (s *searchService) Search(ctx context.Context, query string) ([]*model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*model.User{}, nil
	}
	users, err := s.users.SearchByUsername(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
