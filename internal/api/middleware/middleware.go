// Package middleware 提供 gin 全局中间件：请求 ID、访问日志、panic 恢复与错误上报
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID 沿用上游的 X-Request-ID，没有则生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string { return c.GetString(requestIDKey) }

// Logger 每个请求一条访问日志，5xx 为 error 级别
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", GetRequestID(c)),
		}
		if id, ok := auth.CurrentIdentity(c); ok {
			fields = append(fields, zap.Uint64("user_id", id.UserID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery 捕获 panic：记录日志、上报 Sentry 并返回 500
// 未初始化 Sentry 时 hub 没有 client，上报为空操作
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			hub := requestHub(c)
			hub.RecoverWithContext(c.Request.Context(), r)
			logger.Error("panic recovered",
				zap.String("panic", fmt.Sprint(r)),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.Stack("stack"))
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

// ReportErrors 将 5xx 响应上挂在 c.Errors 上的错误上报 Sentry
func ReportErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		hub := requestHub(c)
		for _, e := range c.Errors {
			hub.CaptureException(e.Err)
		}
	}
}

func requestHub(c *gin.Context) *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetRequest(c.Request)
	if id := GetRequestID(c); id != "" {
		hub.Scope().SetTag("request_id", id)
	}
	if ident, ok := auth.CurrentIdentity(c); ok {
		hub.Scope().SetUser(sentry.User{ID: fmt.Sprint(ident.UserID), Username: ident.Username})
	}
	return hub
}
