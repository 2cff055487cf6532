package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/service"
)

func (h *Handler) Profile(c *gin.Context) {
	me := auth.MustIdentity(c)
	view, err := h.profileService.GetProfile(c.Request.Context(), me.UserID, c.Param("username"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "profile.html", gin.H{"Title": view.User.Username, "Profile": view})
}

func (h *Handler) EditProfilePage(c *gin.Context) {
	me := auth.MustIdentity(c)
	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), me.UserID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "edit_profile.html", gin.H{"Title": "Edit profile", "Profile": profile})
}

func (h *Handler) EditProfile(c *gin.Context) {
	me := auth.MustIdentity(c)
	var in service.ProfileInput
	_ = c.ShouldBind(&in)

	_, err := h.profileService.UpdateProfile(c.Request.Context(), me.UserID, in, formFile(c, "image"))
	if err != nil {
		if !errors.Is(err, service.ErrValidation) {
			h.renderError(c, err)
			return
		}
		profile, perr := h.profileService.GetOwnProfile(c.Request.Context(), me.UserID)
		if perr != nil {
			h.renderError(c, perr)
			return
		}
		profile.Bio = in.Bio
		h.render(c, http.StatusBadRequest, "edit_profile.html", gin.H{
			"Title":   "Edit profile",
			"Profile": profile,
			"Errors":  service.FieldErrors(err),
		})
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+me.Username+"/")
}
