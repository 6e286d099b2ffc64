// Package mock - сервер заказов в памяти для тестов сервисов.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"order-desk/internal/dto"
	"order-desk/internal/entities"
	"order-desk/internal/integrations"
	apperrors "order-desk/pkg/errors"
)

// MockProvider хранит заказы, цены и категории и считает вызовы.
// Хуки позволяют тесту придержать или сломать конкретный вызов.
type MockProvider struct {
	mu         sync.Mutex
	Orders     []entities.Order
	Prices     map[int64]*entities.PriceRecord
	Categories []entities.Category

	// Ошибки цены по заказу
	PriceErrors map[int64]error
	// Ошибка для всех ListOrders
	ListError error

	// BeforeList вызывается до ответа на ListOrders; может блокироваться
	BeforeList func(ctx context.Context, q dto.QueryDescriptor)

	ListCalls       []dto.QueryDescriptor
	PriceCalls      int
	CategoryCalls   int
	StatusUpdates   []dto.StatusUpdateDTO
	CompletedOrders []int64
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Prices:      make(map[int64]*entities.PriceRecord),
		PriceErrors: make(map[int64]error),
	}
}

var _ integrations.OrderBackend = (*MockProvider)(nil)

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) ListOrders(ctx context.Context, q dto.QueryDescriptor) (*dto.OrderListResponseDTO, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, q)
	hook := m.BeforeList
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	var matched []entities.Order
	for _, o := range m.Orders {
		if q.Search != "" && !strings.Contains(o.OrderName, q.Search) && !strings.Contains(o.CustomerName, q.Search) {
			continue
		}
		matched = append(matched, o)
	}

	start := (q.Page - 1) * q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	results := make([]entities.Order, end-start)
	copy(results, matched[start:end])
	return &dto.OrderListResponseDTO{Results: results, Count: len(matched)}, nil
}

func (m *MockProvider) GetPrice(_ context.Context, orderID int64) (*entities.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PriceCalls++
	if err := m.PriceErrors[orderID]; err != nil {
		return nil, err
	}
	rec, ok := m.Prices[orderID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockProvider) GetOrder(_ context.Context, orderID int64) (*entities.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Orders {
		if o.ID == orderID {
			cp := o
			return &cp, nil
		}
	}
	return nil, apperrors.NewFetchError("get_order", 404, apperrors.ErrNotFound)
}

func (m *MockProvider) ListCategories(_ context.Context) ([]entities.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CategoryCalls++
	out := make([]entities.Category, len(m.Categories))
	copy(out, m.Categories)
	return out, nil
}

func (m *MockProvider) UpdateStatus(_ context.Context, orderID int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates = append(m.StatusUpdates, dto.StatusUpdateDTO{OrderID: orderID, Status: status})
	for i := range m.Orders {
		if m.Orders[i].ID == orderID {
			m.Orders[i].Status = status
			return nil
		}
	}
	return apperrors.NewFetchError("update_status", 404, apperrors.ErrNotFound)
}

func (m *MockProvider) CompleteRemainder(_ context.Context, orderID int64) (*dto.RemainderCompletedDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Prices[orderID]
	if !ok {
		return nil, apperrors.NewFetchError("complete_remainder", 404, apperrors.ErrNotFound)
	}
	if !rec.Price.Valid || !rec.ReceivePrice.Valid {
		return nil, apperrors.NewFetchError("complete_remainder", 400, apperrors.ErrBadRequest)
	}
	rec.ReceivePrice = entities.AmountFrom(rec.ReceivePrice.Value.Add(rec.ReminderPrice.OrZero()))
	rec.ReminderPrice = entities.AmountFrom(decimal.Zero)
	m.CompletedOrders = append(m.CompletedOrders, orderID)
	return &dto.RemainderCompletedDTO{
		OrderID:       orderID,
		ReceivePrice:  rec.ReceivePrice,
		ReminderPrice: rec.ReminderPrice,
	}, nil
}

// Calls возвращает копии счётчиков под мьютексом.
func (m *MockProvider) Calls() (lists []dto.QueryDescriptor, updates []dto.StatusUpdateDTO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lists = append(lists, m.ListCalls...)
	updates = append(updates, m.StatusUpdates...)
	return lists, updates
}
