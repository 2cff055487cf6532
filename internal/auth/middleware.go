package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/pkg/logger"
)

const identityKey = "auth.identity"

// LoginPath 未登录时的跳转地址
const LoginPath = "/accounts/login/"

// Authenticate 解析会话 cookie 写入上下文，不拦截请求
func (m *Manager) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cfg.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		id, err := m.Resolve(c.Request.Context(), token)
		if err != nil {
			if !isAnonymous(err) {
				logger.Error("session lookup failed", zap.Error(err))
			}
			c.Next()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAuth 未登录跳转登录页并带上 next
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); ok {
			c.Next()
			return
		}
		target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MustIdentity 仅用于 RequireAuth 之后的 handler
func MustIdentity(c *gin.Context) Identity {
	id, ok := CurrentIdentity(c)
	if !ok {
		panic("auth: MustIdentity called without RequireAuth")
	}
	return id
}

// SafeNext 只接受站内绝对路径，否则返回 fallback
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}
