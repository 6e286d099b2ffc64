package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/pkg/api"
	"order-desk/pkg/constants"
)

// SessionStore - то, что шлюзу нужно от менеджера сессии.
type SessionStore interface {
	Role(ctx context.Context) (constants.Role, error)
	Clear(ctx context.Context) error
}

type SessionController struct {
	store  SessionStore
	logger *zap.Logger
}

func NewSessionController(store SessionStore, logger *zap.Logger) *SessionController {
	return &SessionController{store: store, logger: logger}
}

type sessionInfo struct {
	Role       int    `json:"role"`
	StatusList string `json:"status_list,omitempty"`
}

func (c *SessionController) GetSession(ctx echo.Context) error {
	role, err := c.store.Role(ctx.Request().Context())
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	info := sessionInfo{Role: int(role)}
	if name, err := role.StatusListName(); err == nil {
		info.StatusList = name
	}
	return api.SuccessOne(ctx, http.StatusOK, "Сессия активна", info)
}

// Logout удаляет токены и роль из хранилища.
func (c *SessionController) Logout(ctx echo.Context) error {
	if err := c.store.Clear(ctx.Request().Context()); err != nil {
		c.logger.Error("Logout: не удалось очистить сессию", zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Сессия завершена", nil)
}
