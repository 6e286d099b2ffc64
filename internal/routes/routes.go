package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/internal/controllers"
	"order-desk/internal/listeners"
	"order-desk/internal/metrics"
	"order-desk/internal/services"
	"order-desk/pkg/middleware"
)

type Loggers struct {
	Main   *zap.Logger
	Auth   *zap.Logger
	Screen *zap.Logger
	Bill   *zap.Logger
}

// SessionService - менеджер сессии, как его видит шлюз.
type SessionService interface {
	middleware.TokenSource
	controllers.SessionStore
}

type Dependencies struct {
	Screens       *services.ScreenSet
	Bills         services.BillServiceInterface
	Notifications *listeners.NotificationListener
	Session       SessionService
	Metrics       *metrics.Metrics
}

func InitRouter(e *echo.Echo, deps Dependencies, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	e.Use(middleware.InjectLogger(loggers.Main))
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.Session, loggers.Auth)

	// --- 1. РОУТЕРЫ ---
	// метрики и уведомления доступны без сессии
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	runNotificationRouter(api, deps.Notifications)

	secureGroup := api.Group("", authMW.Auth)
	runSessionRouter(secureGroup, deps.Session, loggers.Auth)
	runScreenRouter(secureGroup, deps.Screens, loggers.Screen)
	runBillRouter(secureGroup, deps.Bills, deps.Screens, loggers.Bill)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
