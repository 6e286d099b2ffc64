package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"order-desk/internal/entities"
	"order-desk/internal/integrations/mock"
	"order-desk/internal/repositories"
	"order-desk/pkg/constants"
	apperrors "order-desk/pkg/errors"
)

func newBillBackend() *mock.MockProvider {
	b := mock.NewMockProvider()
	b.Categories = []entities.Category{{ID: 1, Name: "کارت ویزیت"}}
	b.Orders = seedOrders(3, "Delivery")
	b.Orders[0].Designer = &entities.DesignerDetails{ID: 4, FullName: "Sara"}

	p1 := priceRecord(1, "1500", "500", "1000")
	p1.CreatedAt = null.TimeFrom(time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))
	p1.DeliveryDate = null.StringFrom("1403-01-15")
	p2 := priceRecord(2, "300", "300", "0")
	p2.CreatedAt = null.TimeFrom(time.Date(2024, 1, 25, 10, 0, 0, 0, time.UTC))
	p2.DeliveryDate = null.StringFrom("1403-01-05")
	b.Prices[1] = p1
	b.Prices[2] = p2
	return b
}

func newTestBillService(b *mock.MockProvider) BillServiceInterface {
	categories := NewCategoryService(b, repositories.NewMemoryCacheRepository(), time.Minute, zap.NewNop())
	return NewBillService(b, NewAggregationService(b, 4, nil, zap.NewNop()), categories, zap.NewNop())
}

func TestBillService_Compose(t *testing.T) {
	b := newBillBackend()
	s := newTestBillService(b)

	bill, err := s.Compose(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, "Ali", bill.CustomerName)
	require.Len(t, bill.Rows, 3)
	assert.Equal(t, "Sara", bill.Rows[0].Designer)
	assert.Equal(t, "کارت ویزیت", bill.Rows[0].Category)
	assert.Equal(t, "1000.00", bill.Rows[0].ReminderPrice)
	assert.Equal(t, constants.SentinelUnknown, bill.Rows[1].Designer)
	// у третьего заказа цены нет
	assert.Equal(t, constants.SentinelUnknown, bill.Rows[2].Price)

	assert.Equal(t, "1800.00", bill.Totals.Price)
	assert.Equal(t, "800.00", bill.Totals.ReceivePrice)
	assert.Equal(t, "1000.00", bill.Totals.ReminderPrice)
	assert.Equal(t, "1402/11/05", bill.ReceivedAt)
	assert.Equal(t, "1403/01/15", bill.DueAt)
}

func TestBillService_RefusesPartialData(t *testing.T) {
	b := newBillBackend()
	b.PriceErrors[2] = apperrors.NewFetchError("get_price", 502, errors.New("bad gateway"))
	s := newTestBillService(b)

	_, err := s.Compose(context.Background(), []int64{1, 2})
	assert.ErrorIs(t, err, apperrors.ErrBillIncomplete)

	_, err = s.ComposeFromSnapshot(context.Background(), Snapshot{Orders: b.Orders, Enriched: false})
	assert.ErrorIs(t, err, apperrors.ErrBillIncomplete)

	_, err = s.Compose(context.Background(), []int64{404})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.Compose(context.Background(), nil)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBillService_ComposeFromSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("все цены загружены", func(t *testing.T) {
		b := newBillBackend()
		c, _ := newTestController(t, b, deliveryScreen(), nil)
		_, err := c.Load(ctx)
		require.NoError(t, err)

		bill, err := newTestBillService(b).ComposeFromSnapshot(ctx, c.Snapshot())
		require.NoError(t, err)
		require.Len(t, bill.Rows, 3)
		assert.Equal(t, "1800.00", bill.Totals.Price)
	})

	t.Run("цена одного заказа не загрузилась", func(t *testing.T) {
		b := newBillBackend()
		b.PriceErrors[2] = apperrors.NewFetchError("get_price", 502, errors.New("bad gateway"))
		c, _ := newTestController(t, b, deliveryScreen(), nil)
		_, err := c.Load(ctx)
		require.NoError(t, err)

		snap := c.Snapshot()
		require.True(t, snap.Enriched)
		require.Contains(t, snap.PriceErrors, int64(2))
		assert.Nil(t, snap.Prices[2])

		_, err = newTestBillService(b).ComposeFromSnapshot(ctx, snap)
		assert.ErrorIs(t, err, apperrors.ErrBillIncomplete)
		assert.Contains(t, err.Error(), "[2]")
	})
}

func TestBillService_CategoriesFromCache(t *testing.T) {
	b := newBillBackend()
	s := newTestBillService(b)

	for i := 0; i < 2; i++ {
		bill, err := s.Compose(context.Background(), []int64{1})
		require.NoError(t, err)
		assert.Equal(t, "کارت ویزیت", bill.Rows[0].Category)
	}
	assert.Equal(t, 1, b.CategoryCalls)
}

func TestWriteBillXLSX(t *testing.T) {
	b := newBillBackend()
	bill, err := newTestBillService(b).Compose(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBillXLSX(&buf, bill))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	customer, err := f.GetCellValue(billSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Ali", customer)

	rows, err := f.GetRows(billSheet)
	require.NoError(t, err)
	// 3 строки шапки, пустая строка, заголовки, 2 заказа и итог
	require.Len(t, rows, 8)
	total := rows[7]
	assert.Equal(t, "1800.00", total[5])
	assert.Equal(t, "800.00", total[6])
}
