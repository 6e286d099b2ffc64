// Package app собирает зависимости шлюза из конфигурации.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"order-desk/internal/integrations"
	"order-desk/internal/integrations/printshop"
	"order-desk/internal/listeners"
	"order-desk/internal/metrics"
	"order-desk/internal/repositories"
	"order-desk/internal/routes"
	"order-desk/internal/services"
	"order-desk/internal/session"
	"order-desk/pkg/api"
	"order-desk/pkg/config"
	"order-desk/pkg/cryptoblob"
	"order-desk/pkg/eventbus"
	apperrors "order-desk/pkg/errors"
	"order-desk/pkg/service"
	"order-desk/pkg/validation"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	Redis         *redis.Client
	Bus           *eventbus.Bus
	Metrics       *metrics.Metrics
	Session       *session.Manager
	Backend       integrations.OrderBackend
	Notifications *listeners.NotificationListener
	Screens       *services.ScreenSet
	Bills         services.BillServiceInterface
}

// New подключает хранилище сессии и собирает сервисы. Backend можно подменить через opts.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Bus:     eventbus.New(logger.Named("eventbus")),
		Metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	store, cache, err := a.stores(ctx)
	if err != nil {
		return nil, err
	}

	jwtSvc := service.NewJWTService()
	authClient := printshop.NewAuthClient(cfg.API.BaseURL, logger)
	a.Session = session.NewManager(store, cryptoblob.New(cfg.Session.SecretKey), jwtSvc, authClient, a.Bus, a.Metrics, logger)

	if a.Backend == nil {
		a.Backend = printshop.New(cfg.API.BaseURL, a.Session, logger, printshop.WithMetrics(a.Metrics))
	}

	a.Notifications = listeners.NewNotificationListener(logger)
	a.Notifications.Register(a.Bus)

	aggregator := services.NewAggregationService(a.Backend, cfg.API.PriceLookupConcurrency, a.Metrics, logger)
	categories := services.NewCategoryService(a.Backend, cache, cfg.Screens.CategoryCacheTTL, logger)
	a.Screens = services.NewScreenSet(services.DefaultScreens(cfg.Screens.PageSize), services.ControllerDeps{
		Backend:        a.Backend,
		Builder:        services.NewQueryBuilder(validation.New(), logger),
		Aggregator:     aggregator,
		Roles:          a.Session,
		Categories:     categories,
		Bus:            a.Bus,
		Metrics:        a.Metrics,
		Logger:         logger,
		Debounce:       cfg.Screens.Debounce,
		RequestTimeout: cfg.API.RequestTimeout,
	})
	a.Bills = services.NewBillService(a.Backend, aggregator, categories, logger)

	return a, nil
}

type Option func(*App)

// WithBackend подменяет сервер заказов (тесты, офлайн-режим).
func WithBackend(b integrations.OrderBackend) Option {
	return func(a *App) { a.Backend = b }
}

// stores возвращает хранилище учётных данных и кеш на выбранном бэкенде.
func (a *App) stores(ctx context.Context) (repositories.CredentialRepositoryInterface, repositories.CacheRepositoryInterface, error) {
	switch a.Config.Session.Store {
	case StoreMemory:
		return repositories.NewMemoryCredentialRepository(), repositories.NewMemoryCacheRepository(), nil
	case StoreRedis:
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     a.Config.Redis.Address,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		if _, err := a.Redis.Ping(ctx).Result(); err != nil {
			_ = a.Redis.Close()
			a.Redis = nil
			return nil, nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", a.Config.Redis.Address, err)
		}
		return repositories.NewRedisCredentialRepository(a.Redis, a.Config.Redis.NotifyChannel, a.Logger),
			repositories.NewRedisCacheRepository(a.Redis, a.Config.Redis.CachePrefix), nil
	default:
		return nil, nil, fmt.Errorf("неизвестное хранилище сессии %q", a.Config.Session.Store)
	}
}

// Router собирает echo с общими middleware и маршрутами шлюза.
func (a *App) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	logger := a.Logger

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = api.ErrorResponse(c, apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err))
			}
			return err
		},
	}))

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     a.Config.Gateway.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
	}))

	routes.InitRouter(e, routes.Dependencies{
		Screens:       a.Screens,
		Bills:         a.Bills,
		Notifications: a.Notifications,
		Session:       a.Session,
		Metrics:       a.Metrics,
	}, &routes.Loggers{
		Main:   logger,
		Auth:   logger.Named("auth"),
		Screen: logger.Named("screen"),
		Bill:   logger.Named("bill"),
	})
	return e
}

func (a *App) Close() {
	a.Screens.Close()
	a.Notifications.Unregister()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Ошибка закрытия Redis", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
