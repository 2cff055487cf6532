package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/service"
)

func (h *Handler) SignupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", gin.H{"Title": "Sign up"})
}

func (h *Handler) Signup(c *gin.Context) {
	var in service.SignupInput
	_ = c.ShouldBind(&in)

	user, err := h.authService.Signup(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.render(c, http.StatusBadRequest, "signup.html", gin.H{
				"Title":    "Sign up",
				"Username": in.Username,
				"Errors":   service.FieldErrors(err),
			})
			return
		}
		h.renderError(c, err)
		return
	}
	if _, err := h.sessions.Login(c, user.ID, user.Username); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) LoginPage(c *gin.Context) {
	next := auth.SafeNext(c.Query("next"), "/")
	if _, ok := auth.CurrentIdentity(c); ok {
		c.Redirect(http.StatusFound, next)
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Next": next})
}

func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	_ = c.ShouldBind(&in)
	next := auth.SafeNext(c.PostForm("next"), "/")

	user, err := h.authService.Authenticate(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrValidation) {
			h.render(c, http.StatusBadRequest, "login.html", gin.H{
				"Title":    "Log in",
				"Next":     next,
				"Username": in.Username,
				"Error":    "Please enter a correct username and password.",
			})
			return
		}
		h.renderError(c, err)
		return
	}
	if _, err := h.sessions.Login(c, user.ID, user.Username); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, next)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c); err != nil {
		_ = c.Error(err)
	}
	c.Redirect(http.StatusFound, auth.LoginPath)
}
