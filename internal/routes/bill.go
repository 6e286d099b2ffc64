package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/internal/controllers"
	"order-desk/internal/services"
)

func runBillRouter(
	secureGroup *echo.Group,
	billService services.BillServiceInterface,
	screens *services.ScreenSet,
	logger *zap.Logger,
) {
	billController := controllers.NewBillController(billService, screens, logger)

	secureGroup.GET("/bill", billController.GetBill)
	secureGroup.GET("/screens/:screen/bill", billController.GetScreenBill)
}
