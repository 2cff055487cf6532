// Package auth 基于 cookie 的登录会话：会话存储、JWT 令牌与 gin 中间件
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session 一个已登录的浏览器
type Session struct {
	ID        string    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired() bool { return time.Now().After(s.ExpiresAt) }

func NewSession(userID uint64, username string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// SessionStore 会话存储
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	// 不可用时返回 ErrSessionNotFound 或 ErrSessionExpired
	Get(ctx context.Context, id string) (*Session, error)
	// 删除不存在的 id 不报错
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore 未配置 Redis 时及测试中使用
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

func (m *MemorySessionStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.IsExpired() {
		_ = m.Delete(context.Background(), id)
		return nil, ErrSessionExpired
	}
	return &s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
