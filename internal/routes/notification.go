package routes

import (
	"github.com/labstack/echo/v4"

	"order-desk/internal/controllers"
	"order-desk/internal/listeners"
)

func runNotificationRouter(api *echo.Group, listener *listeners.NotificationListener) {
	ctrl := controllers.NewNotificationController(listener)
	api.GET("/notifications", ctrl.GetNotifications)
}
