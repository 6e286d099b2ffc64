package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"order-desk/internal/dto"
	"order-desk/internal/services"
	"order-desk/pkg/api"
	"order-desk/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BillController struct {
	billService services.BillServiceInterface
	screens     *services.ScreenSet
	logger      *zap.Logger
}

func NewBillController(billService services.BillServiceInterface, screens *services.ScreenSet, logger *zap.Logger) *BillController {
	return &BillController{billService: billService, screens: screens, logger: logger}
}

// GetBill собирает счёт по выбранным заказам: ?ids=1,2,3&format=json|xlsx
func (c *BillController) GetBill(ctx echo.Context) error {
	ids, err := utils.ParseIDList(ctx.QueryParam("ids"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	bill, err := c.billService.Compose(ctx.Request().Context(), ids)
	if err != nil {
		c.logger.Warn("GetBill: счёт не собран", zap.Int64s("ids", ids), zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return c.respond(ctx, bill)
}

// GetScreenBill собирает счёт по текущей странице экрана.
func (c *BillController) GetScreenBill(ctx echo.Context) error {
	list, err := c.screens.Get(ctx.Param("screen"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	bill, err := c.billService.ComposeFromSnapshot(ctx.Request().Context(), list.Snapshot())
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return c.respond(ctx, bill)
}

func (c *BillController) respond(ctx echo.Context, bill *dto.BillDTO) error {
	if strings.ToLower(ctx.QueryParam("format")) == "xlsx" {
		return c.respondWithXLSX(ctx, bill)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Счёт сформирован", bill)
}

func (c *BillController) respondWithXLSX(ctx echo.Context, bill *dto.BillDTO) error {
	var buf bytes.Buffer
	if err := services.WriteBillXLSX(&buf, bill); err != nil {
		c.logger.Error("Не удалось сформировать xlsx счёта", zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}

	fileName := fmt.Sprintf("bill_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
