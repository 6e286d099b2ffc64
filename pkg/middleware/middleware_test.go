package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "order-desk/pkg/errors"
)

type stubTokens struct{ err error }

func (s stubTokens) GetValidToken(context.Context) (string, error) { return "tok", s.err }

func newServer(tokens TokenSource, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.Use(InjectLogger(logger))
	auth := NewAuthMiddleware(tokens, logger)
	e.GET("/secure", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, auth.Auth)
	return e
}

func TestAuth(t *testing.T) {
	e := newServer(stubTokens{}, zap.NewNop())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secure", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	e = newServer(stubTokens{err: apperrors.ErrSessionExpired}, zap.NewNop())
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secure", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInjectLogger_RequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := newServer(stubTokens{}, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
	entries := logs.FilterMessage("HTTP запрос").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "/secure", fields["path"])
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secure", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}
