package notify

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courtclub/internal/api"
	"courtclub/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.service.List(c.Request.Context(), memberID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid notification id"})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), memberID, notificationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "notification marked as read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), memberID); err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "all notifications marked as read"})
}
