package controllers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"order-desk/internal/listeners"
	"order-desk/pkg/api"
)

const defaultNotificationsLimit = 20

type NotificationController struct {
	listener *listeners.NotificationListener
}

func NewNotificationController(listener *listeners.NotificationListener) *NotificationController {
	return &NotificationController{listener: listener}
}

// GetNotifications - последние уведомления, новые первыми. ?limit=N
func (c *NotificationController) GetNotifications(ctx echo.Context) error {
	limit := defaultNotificationsLimit
	if l, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && l > 0 {
		limit = l
	}
	items := c.listener.Recent(limit)
	return api.SuccessList(ctx, "Уведомления получены", items, uint64(len(items)), 1, limit)
}
