package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "order-desk/pkg/errors"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", apperrors.NewValidationError("page", "bad"), http.StatusBadRequest},
		{"no credential", apperrors.ErrNoCredential, http.StatusUnauthorized},
		{"expired wrapped", fmt.Errorf("%w: refresh", apperrors.ErrSessionExpired), http.StatusUnauthorized},
		{"unknown role", apperrors.ErrUnknownRole, http.StatusForbidden},
		{"not found over fetch", apperrors.NewFetchError("get_order", 404, apperrors.ErrNotFound), http.StatusNotFound},
		{"no next stage", apperrors.ErrNoNextStage, http.StatusConflict},
		{"bill incomplete", apperrors.ErrBillIncomplete, http.StatusConflict},
		{"upstream 5xx", apperrors.NewFetchError("list_orders", 503, errors.New("down")), http.StatusBadGateway},
		{"http error", apperrors.NewHttpError(http.StatusTeapot, "чай", nil), http.StatusTeapot},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := StatusOf(tc.err)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, ErrorResponse(c, apperrors.NewValidationError("start_date", "неверная дата")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp Response[map[string]string]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Status)
	assert.Equal(t, "неверная дата", resp.Body["start_date"])
}

func TestSuccessList_Pagination(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, SuccessList[int](c, "ok", nil, 45, 2, 20))

	var resp Response[ListBody[int]]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Body.List)
	assert.Equal(t, 3, resp.Body.Pagination.TotalPages)
}
