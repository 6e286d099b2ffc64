package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "order-desk/pkg/errors"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// NewPaginationMeta считает число страниц по общему количеству записей.
func NewPaginationMeta(total uint64, page, limit int) *PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}
	return &PaginationMeta{
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
		Limit:      limit,
	}
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int) error {
	if list == nil {
		list = make([]T, 0)
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body: ListBody[T]{
			List:       list,
			Pagination: NewPaginationMeta(total, page, limit),
		},
	})
}

// ErrorResponse переводит ошибку домена в HTTP-статус и конверт ответа.
// Ошибки валидации отдают поля в body.
func ErrorResponse(c echo.Context, err error) error {
	code, msg := StatusOf(err)

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(code, Response[map[string]string]{
			Status:  false,
			Message: msg,
			Body:    verr.Fields,
		})
	}

	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
	})
}

// StatusOf возвращает код ответа и сообщение для клиента.
func StatusOf(err error) (int, string) {
	var (
		httpErr  *apperrors.HttpError
		verr     *apperrors.ValidationError
		fetchErr *apperrors.FetchError
	)

	switch {
	case errors.As(err, &httpErr):
		// для HttpError берем только пользовательское сообщение
		return httpErr.Code, httpErr.Message
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, apperrors.ErrNoCredential),
		errors.Is(err, apperrors.ErrSessionExpired),
		errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrUnknownRole):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrNoNextStage),
		errors.Is(err, apperrors.ErrBillIncomplete),
		errors.Is(err, apperrors.ErrSuperseded):
		return http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
