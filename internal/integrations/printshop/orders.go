package printshop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"order-desk/internal/dto"
	"order-desk/internal/entities"
)

const groupPrefix = "/group/"

// ListOrders запрашивает страницу заказов по дескриптору.
func (p *Provider) ListOrders(ctx context.Context, q dto.QueryDescriptor) (*dto.OrderListResponseDTO, error) {
	page, err := fetchJSON[dto.OrderListResponseDTO](ctx, p, request{
		op:     "list_orders",
		method: http.MethodGet,
		path:   groupPrefix + q.Resource,
		query:  q.Values(),
	})
	if err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []entities.Order{}
	}
	p.logger.Debug("Получена страница заказов",
		zap.String("resource", q.Resource),
		zap.Int("page", q.Page),
		zap.Int("count", page.Count),
	)
	return &page, nil
}

// GetPrice возвращает запись цены заказа или nil, если её ещё нет.
func (p *Provider) GetPrice(ctx context.Context, orderID int64) (*entities.PriceRecord, error) {
	records, err := fetchJSON[[]entities.PriceRecord](ctx, p, request{
		op:     "get_price",
		method: http.MethodGet,
		path:   groupPrefix + "order-by-price/",
		query:  url.Values{"order": {strconv.FormatInt(orderID, 10)}},
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records) > 1 {
		p.logger.Warn("Для заказа несколько записей цены, берём первую",
			zap.Int64("order_id", orderID), zap.Int("count", len(records)))
	}
	rec := records[0]
	// order_id сервер не отдаёт, только вложенный order
	rec.OrderID = orderID
	return &rec, nil
}

func (p *Provider) GetOrder(ctx context.Context, orderID int64) (*entities.Order, error) {
	order, err := fetchJSON[entities.Order](ctx, p, request{
		op:     "get_order",
		method: http.MethodGet,
		path:   fmt.Sprintf("%sorders/%d/", groupPrefix, orderID),
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (p *Provider) ListCategories(ctx context.Context) ([]entities.Category, error) {
	return fetchJSON[[]entities.Category](ctx, p, request{
		op:     "list_categories",
		method: http.MethodGet,
		path:   groupPrefix + "categories/",
	})
}

// UpdateStatus переводит заказ на указанный этап. Не повторяется.
func (p *Provider) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	_, err := p.do(ctx, request{
		op:     "update_status",
		method: http.MethodPost,
		path:   groupPrefix + "orders/update-status/",
		body:   dto.StatusUpdateDTO{OrderID: orderID, Status: status},
	})
	if err != nil {
		return err
	}
	p.logger.Info("Статус заказа обновлён", zap.Int64("order_id", orderID), zap.String("status", status))
	return nil
}

// CompleteRemainder переносит остаток в предоплату: заказ считается оплаченным полностью.
func (p *Provider) CompleteRemainder(ctx context.Context, orderID int64) (*dto.RemainderCompletedDTO, error) {
	res, err := fetchJSON[dto.RemainderCompletedDTO](ctx, p, request{
		op:     "complete_remainder",
		method: http.MethodPost,
		path:   fmt.Sprintf("%sorder-by-price/complete/%d/", groupPrefix, orderID),
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("Остаток по заказу закрыт",
		zap.Int64("order_id", orderID),
		zap.String("receive_price", res.ReceivePrice.String()),
	)
	return &res, nil
}
