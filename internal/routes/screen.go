package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/internal/controllers"
	"order-desk/internal/services"
)

func runScreenRouter(secureGroup *echo.Group, screens *services.ScreenSet, logger *zap.Logger) {
	screenCtrl := controllers.NewScreenController(screens, logger)
	{
		secureGroup.GET("/screens", screenCtrl.ListScreens)
		secureGroup.GET("/screens/:screen", screenCtrl.GetSnapshot)
		secureGroup.GET("/screens/:screen/orders", screenCtrl.GetOrders)
		secureGroup.PUT("/screens/:screen/criteria", screenCtrl.SetCriteria)
		secureGroup.POST("/screens/:screen/refresh", screenCtrl.Refresh)
		secureGroup.POST("/screens/:screen/orders/:id/advance", screenCtrl.AdvanceOrder)
		secureGroup.POST("/screens/:screen/orders/:id/complete", screenCtrl.CompleteRemainder)
	}
}
