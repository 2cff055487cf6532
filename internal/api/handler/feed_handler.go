package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/service"
)

// Home 首页时间线
func (h *Handler) Home(c *gin.Context) {
	h.renderHome(c, http.StatusOK, gin.H{})
}

func (h *Handler) renderHome(c *gin.Context, status int, data gin.H) {
	me := auth.MustIdentity(c)
	posts, err := h.feedService.Feed(c.Request.Context(), me.UserID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	data["Title"] = "Home"
	data["Posts"] = posts
	h.render(c, status, "home.html", data)
}

// CreatePost 发帖，校验失败时带错误信息重新渲染首页
func (h *Handler) CreatePost(c *gin.Context) {
	me := auth.MustIdentity(c)
	var in service.PostInput
	_ = c.ShouldBind(&in)

	_, err := h.feedService.CreatePost(c.Request.Context(), me.UserID, in, formFile(c, "image"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.renderHome(c, http.StatusBadRequest, gin.H{"Content": in.Content, "Errors": service.FieldErrors(err)})
			return
		}
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// LikePost 表单版点赞切换
func (h *Handler) LikePost(c *gin.Context) {
	me := auth.MustIdentity(c)
	id, err := postID(c, "post_id")
	if err != nil {
		h.renderError(c, err)
		return
	}
	if _, err := h.socialService.ToggleLike(c.Request.Context(), me.UserID, id); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// AddComment 空评论不报错，直接返回首页
func (h *Handler) AddComment(c *gin.Context) {
	me := auth.MustIdentity(c)
	id, err := postID(c, "post_id")
	if err != nil {
		h.renderError(c, err)
		return
	}
	var in service.CommentInput
	_ = c.ShouldBind(&in)

	_, err = h.feedService.AddComment(c.Request.Context(), me.UserID, id, in)
	if err != nil && !errors.Is(err, service.ErrValidation) {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// DeletePost 非作者返回 403
func (h *Handler) DeletePost(c *gin.Context) {
	me := auth.MustIdentity(c)
	id, err := postID(c, "post_id")
	if err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.feedService.DeletePost(c.Request.Context(), me.UserID, id); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
