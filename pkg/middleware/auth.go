package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/pkg/api"
)

// TokenSource выдаёт действующий токен доступа, при необходимости обновляя его.
type TokenSource interface {
	GetValidToken(ctx context.Context) (string, error)
}

type AuthMiddleware struct {
	tokens TokenSource
	logger *zap.Logger
}

func NewAuthMiddleware(tokens TokenSource, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// Auth пропускает запрос, только если есть действующая сессия.
// Без сессии или после неудачного обновления токена отвечает 401.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := m.tokens.GetValidToken(c.Request().Context()); err != nil {
			LoggerFrom(c, m.logger).Warn("AuthMiddleware: Нет действующей сессии", zap.Error(err))
			return api.ErrorResponse(c, err)
		}
		return next(c)
	}
}
