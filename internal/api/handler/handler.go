package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/service"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps 构造 Handler 所需的全部依赖
type Deps struct {
	Auth     service.AuthService
	Profiles service.ProfileService
	Feed     service.FeedService
	Social   service.SocialService
	Messages service.MessageService
	Search   service.SearchService
	Sessions *auth.Manager
	DB       Pinger
}

type Handler struct {
	authService    service.AuthService
	profileService service.ProfileService
	feedService    service.FeedService
	socialService  service.SocialService
	messageService service.MessageService
	searchService  service.SearchService
	sessions       *auth.Manager
	db             Pinger
}

func New(d Deps) *Handler {
	return &Handler{
		authService:    d.Auth,
		profileService: d.Profiles,
		feedService:    d.Feed,
		socialService:  d.Social,
		messageService: d.Messages,
		searchService:  d.Search,
		sessions:       d.Sessions,
		db:             d.DB,
	}
}

// render 补齐布局模板依赖的公共字段
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if id, ok := auth.CurrentIdentity(c); ok {
		data["Me"] = &id
	} else {
		data["Me"] = (*auth.Identity)(nil)
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string(nil)
	}
	if _, ok := data["Query"]; !ok {
		data["Query"] = ""
	}
	c.HTML(status, name, data)
}

// renderError 按错误类型渲染错误页
func (h *Handler) renderError(c *gin.Context, err error) {
	status, msg := pageStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	h.render(c, status, "error.html", gin.H{"Title": http.StatusText(status), "Status": status, "Message": msg})
	c.Abort()
}

func pageStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "The page you were looking for does not exist."
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "You are not allowed to do that."
	case errors.Is(err, service.ErrFollowSelf):
		return http.StatusBadRequest, "You cannot follow yourself."
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again later."
	}
}

// postID 解析路径中的帖子 ID，非法值按不存在处理
func postID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}

// formFile 未上传文件时返回 nil
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
