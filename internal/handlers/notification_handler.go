package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boost-service/internal/services"
	"boost-service/pkg/common"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.Notifications.List(CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(items, "Notifications"))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Notifications.MarkRead(CurrentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Notification read"))
}
