package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/internal/controllers"
)

func runSessionRouter(secureGroup *echo.Group, store controllers.SessionStore, logger *zap.Logger) {
	ctrl := controllers.NewSessionController(store, logger)
	secureGroup.GET("/session", ctrl.GetSession)
	secureGroup.DELETE("/session", ctrl.Logout)
}
