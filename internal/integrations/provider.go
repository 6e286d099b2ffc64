package integrations

import (
	"context"

	"order-desk/internal/dto"
	"order-desk/internal/entities"
)

// OrderBackend - операции сервера заказов, нужные сервисам.
// GetPrice возвращает nil без ошибки, если цена ещё не заведена.
type OrderBackend interface {
	Name() string
	ListOrders(ctx context.Context, q dto.QueryDescriptor) (*dto.OrderListResponseDTO, error)
	GetPrice(ctx context.Context, orderID int64) (*entities.PriceRecord, error)
	GetOrder(ctx context.Context, orderID int64) (*entities.Order, error)
	ListCategories(ctx context.Context) ([]entities.Category, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
	CompleteRemainder(ctx context.Context, orderID int64) (*dto.RemainderCompletedDTO, error)
}
