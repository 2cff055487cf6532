package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/service"
)

func (h *Handler) Inbox(c *gin.Context) {
	me := auth.MustIdentity(c)
	convs, err := h.messageService.Inbox(c.Request.Context(), me.UserID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "inbox.html", gin.H{"Title": "Inbox", "Conversations": convs})
}

func (h *Handler) Chat(c *gin.Context) {
	h.renderChat(c, http.StatusOK, gin.H{})
}

func (h *Handler) renderChat(c *gin.Context, status int, data gin.H) {
	me := auth.MustIdentity(c)
	other, msgs, err := h.messageService.Thread(c.Request.Context(), me.UserID, c.Param("username"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	data["Title"] = "Chat with " + other.Username
	data["Recipient"] = other
	data["Messages"] = msgs
	h.render(c, status, "chat.html", data)
}

// SendMessage 空消息时重新渲染对话页并返回 400
func (h *Handler) SendMessage(c *gin.Context) {
	me := auth.MustIdentity(c)
	username := c.Param("username")
	var in service.MessageInput
	_ = c.ShouldBind(&in)

	_, err := h.messageService.Send(c.Request.Context(), me.UserID, username, in, formFile(c, "file"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.renderChat(c, http.StatusBadRequest, gin.H{"Body": in.Body, "Errors": service.FieldErrors(err)})
			return
		}
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/chat/"+url.PathEscape(username)+"/")
}
