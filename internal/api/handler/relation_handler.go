package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

// LikeAPI 切换点赞
// @Summary 切换点赞
// @Tags 关系链
// @Produce json
// @Param post_id path int true "帖子ID"
// @Success 200 {object} service.LikeState
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/like/{post_id}/ [post]
func (h *Handler) LikeAPI(c *gin.Context) {
	me := auth.MustIdentity(c)
	id, err := postID(c, "post_id")
	if err != nil {
		response.NotFound(c, "post not found")
		return
	}
	state, err := h.socialService.ToggleLike(c.Request.Context(), me.UserID, id)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// FollowAPI 切换关注
// @Summary 切换关注
// @Tags 关系链
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} service.FollowState
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/follow/{username}/ [post]
func (h *Handler) FollowAPI(c *gin.Context) {
	me := auth.MustIdentity(c)
	state, err := h.socialService.ToggleFollow(c.Request.Context(), me.UserID, c.Param("username"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func apiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrFollowSelf), errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
