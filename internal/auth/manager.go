package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Identity 当前请求的登录用户，由 handler 显式传给 service
type Identity struct {
	UserID    uint64
	Username  string
	SessionID string
}

type ManagerConfig struct {
	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration
}

// Manager 关联会话存储与签名 cookie
type Manager struct {
	store  SessionStore
	tokens *TokenManager
	cfg    ManagerConfig
}

func NewManager(store SessionStore, tokens *TokenManager, cfg ManagerConfig) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "sessionid"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Manager{store: store, tokens: tokens, cfg: cfg}
}

// Login 创建会话并写 cookie
func (m *Manager) Login(c *gin.Context, userID uint64, username string) (*Session, error) {
	s := NewSession(userID, username, m.cfg.SessionTTL)
	if err := m.store.Create(c.Request.Context(), s); err != nil {
		return nil, err
	}
	token, err := m.tokens.Sign(s)
	if err != nil {
		_ = m.store.Delete(c.Request.Context(), s.ID)
		return nil, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, token, int(m.cfg.SessionTTL.Seconds()), "/", "", m.cfg.CookieSecure, true)
	return s, nil
}

// Logout 删除当前会话并清除 cookie
func (m *Manager) Logout(c *gin.Context) error {
	var err error
	if id, ok := CurrentIdentity(c); ok {
		err = m.store.Delete(c.Request.Context(), id.SessionID)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, "", -1, "/", "", m.cfg.CookieSecure, true)
	return err
}

// Resolve token 校验通过且会话仍存在时返回 Identity
func (m *Manager) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return Identity{}, err
	}
	uid, err := claims.UserID()
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	s, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		return Identity{}, err
	}
	if s.UserID != uid {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: s.UserID, Username: s.Username, SessionID: s.ID}, nil
}

// isAnonymous 仅表示未登录的错误
func isAnonymous(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired)
}
