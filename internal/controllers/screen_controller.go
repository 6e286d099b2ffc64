package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/internal/dto"
	"order-desk/internal/services"
	"order-desk/pkg/api"
	apperrors "order-desk/pkg/errors"
	"order-desk/pkg/utils"
)

type ScreenController struct {
	screens *services.ScreenSet
	logger  *zap.Logger
}

func NewScreenController(screens *services.ScreenSet, logger *zap.Logger) *ScreenController {
	return &ScreenController{screens: screens, logger: logger}
}

type screenInfo struct {
	Name         string `json:"name"`
	Resource     string `json:"resource,omitempty"`
	RoleDriven   bool   `json:"role_driven"`
	CategoryList string `json:"category_list,omitempty"`
	WithPrices   bool   `json:"with_prices"`
	CanAdvance   bool   `json:"can_advance"`
	CanComplete  bool   `json:"can_complete"`
	PageSize     int    `json:"page_size"`
}

func (c *ScreenController) ListScreens(ctx echo.Context) error {
	screens := c.screens.Screens()
	res := make([]screenInfo, 0, len(screens))
	for _, s := range screens {
		res = append(res, screenInfo{
			Name:         s.Name,
			Resource:     s.Resource,
			RoleDriven:   s.RoleDriven,
			CategoryList: s.CategoryList,
			WithPrices:   s.WithPrices,
			CanAdvance:   s.CanAdvance,
			CanComplete:  s.CanComplete,
			PageSize:     s.PageSize,
		})
	}
	return api.SuccessOne(ctx, http.StatusOK, "Список экранов получен", res)
}

// GetOrders применяет поиск, даты и страницу из строки запроса и отдаёт страницу экрана.
func (c *ScreenController) GetOrders(ctx echo.Context) error {
	list, err := c.screens.Get(ctx.Param("screen"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	p := utils.ParseListParams(ctx.QueryParams())
	if _, err := list.Apply(ctx.Request().Context(), p.Search, p.StartDate, p.EndDate, p.Page); err != nil {
		c.logger.Warn("GetOrders: не удалось загрузить экран", zap.String("screen", ctx.Param("screen")), zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return c.respondView(ctx, list)
}

// GetSnapshot отдаёт текущее состояние экрана без нового запроса.
func (c *ScreenController) GetSnapshot(ctx echo.Context) error {
	list, err := c.screens.Get(ctx.Param("screen"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return c.respondView(ctx, list)
}

// SetCriteria откладывает ввод поиска и дат до паузы; загрузка пойдёт в фоне со страницы 1.
func (c *ScreenController) SetCriteria(ctx echo.Context) error {
	list, err := c.screens.Get(ctx.Param("screen"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var req dto.CriteriaRequestDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err))
	}
	list.SetDateRange(req.StartDate, req.EndDate)
	list.SetSearch(req.Search)

	return api.SuccessOne[any](ctx, http.StatusAccepted, "Ввод принят", nil)
}

func (c *ScreenController) Refresh(ctx echo.Context) error {
	list, err := c.screens.Get(ctx.Param("screen"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if _, err := list.Refresh(ctx.Request().Context()); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return c.respondView(ctx, list)
}

func (c *ScreenController) AdvanceOrder(ctx echo.Context) error {
	list, err := c.screens.Get(ctx.Param("screen"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if !list.Screen().CanAdvance {
		return api.ErrorResponse(ctx, errActionNotAllowed)
	}
	id, err := parseOrderID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	order, err := list.AdvanceByID(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Warn("AdvanceOrder: заказ не переведён", zap.Int64("order_id", id), zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ переведён на следующий этап", dto.StatusUpdateDTO{
		OrderID: order.ID,
		Status:  order.Status,
	})
}

func (c *ScreenController) CompleteRemainder(ctx echo.Context) error {
	list, err := c.screens.Get(ctx.Param("screen"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if !list.Screen().CanComplete {
		return api.ErrorResponse(ctx, errActionNotAllowed)
	}
	id, err := parseOrderID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, err := list.CompleteRemainder(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Warn("CompleteRemainder: остаток не закрыт", zap.Int64("order_id", id), zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Остаток оплаты закрыт", res)
}

func (c *ScreenController) respondView(ctx echo.Context, list *services.OrderListController) error {
	snap := list.Snapshot()
	return api.SuccessOne(ctx, http.StatusOK, "Список заказов получен", services.ListView(snap))
}

var errActionNotAllowed = apperrors.NewHttpError(http.StatusForbidden, "Действие недоступно на этом экране", nil)

func parseOrderID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID заказа", err)
	}
	return id, nil
}
