package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-desk/internal/entities"
	"order-desk/internal/integrations"
	"order-desk/internal/metrics"
	"order-desk/pkg/constants"
	apperrors "order-desk/pkg/errors"
	"order-desk/pkg/jalali"
)

// PriceLookup - итог запроса цены одного заказа.
// Record == nil и Err == nil: цена не заведена. Err != nil: запрос не удался.
type PriceLookup struct {
	OrderID int64
	Record  *entities.PriceRecord
	Err     error
}

// Totals - суммы по набору записей цены. Отсутствующие суммы считаются нулём.
type Totals struct {
	Price         decimal.Decimal
	ReceivePrice  decimal.Decimal
	ReminderPrice decimal.Decimal
}

// DateBound - крайняя дата набора или "unknown", если дат нет.
type DateBound struct {
	Date  jalali.Date
	Known bool
}

func (b DateBound) String() string {
	if !b.Known {
		return constants.SentinelUnknown
	}
	return b.Date.String()
}

type AggregationServiceInterface interface {
	Lookup(ctx context.Context, orders []entities.Order) []PriceLookup
	Enrich(ctx context.Context, orders []entities.Order) map[int64]*entities.PriceRecord
}

type AggregationService struct {
	backend integrations.OrderBackend
	limit   int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAggregationService(backend integrations.OrderBackend, concurrency int, m *metrics.Metrics, logger *zap.Logger) AggregationServiceInterface {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AggregationService{
		backend: backend,
		limit:   concurrency,
		metrics: m,
		logger:  logger.Named("aggregation"),
	}
}

// Lookup запрашивает цену каждого заказа параллельно и ждёт, пока завершатся все запросы.
// Ошибка одного заказа не влияет на остальные.
func (s *AggregationService) Lookup(ctx context.Context, orders []entities.Order) []PriceLookup {
	out := make([]PriceLookup, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, o := range orders {
		i, o := i, o
		out[i].OrderID = o.ID
		g.Go(func() error {
			rec, err := s.backend.GetPrice(gctx, o.ID)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				s.metrics.PriceLookup("missing")
			case err != nil:
				s.metrics.PriceLookup("failed")
				s.logger.Warn("Не удалось получить цену заказа", zap.Int64("order_id", o.ID), zap.Error(err))
				out[i].Err = err
			case rec == nil:
				s.metrics.PriceLookup("missing")
			default:
				s.metrics.PriceLookup("found")
				out[i].Record = rec
			}
			// ошибку не возвращаем: errgroup отменил бы остальные запросы
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Enrich возвращает цену для каждого заказа; nil означает "N/A".
func (s *AggregationService) Enrich(ctx context.Context, orders []entities.Order) map[int64]*entities.PriceRecord {
	lookups := s.Lookup(ctx, orders)
	prices := make(map[int64]*entities.PriceRecord, len(lookups))
	for _, l := range lookups {
		prices[l.OrderID] = l.Record
	}
	return prices
}

// SumTotals складывает суммы. Порядок записей на результат не влияет.
func SumTotals(records []*entities.PriceRecord) Totals {
	t := Totals{Price: decimal.Zero, ReceivePrice: decimal.Zero, ReminderPrice: decimal.Zero}
	for _, r := range records {
		if r == nil {
			continue
		}
		t.Price = t.Price.Add(r.Price.OrZero())
		t.ReceivePrice = t.ReceivePrice.Add(r.ReceivePrice.OrZero())
		t.ReminderPrice = t.ReminderPrice.Add(r.ReminderPrice.OrZero())
	}
	return t
}

func EarliestDate(dates []jalali.Date) DateBound {
	var b DateBound
	for _, d := range dates {
		if !b.Known || d.Before(b.Date) {
			b = DateBound{Date: d, Known: true}
		}
	}
	return b
}

func LatestDate(dates []jalali.Date) DateBound {
	var b DateBound
	for _, d := range dates {
		if !b.Known || b.Date.Before(d) {
			b = DateBound{Date: d, Known: true}
		}
	}
	return b
}

// ReceivedDates - даты приёма (created_at записи цены) в календаре джалали.
func ReceivedDates(records []*entities.PriceRecord) []jalali.Date {
	var out []jalali.Date
	for _, r := range records {
		if r == nil || !r.CreatedAt.Valid {
			continue
		}
		out = append(out, jalali.FromTime(r.CreatedAt.Time))
	}
	return out
}

// DeliveryDates - разобранные даты доставки; пустые и неверные пропускаются.
func DeliveryDates(records []*entities.PriceRecord) []jalali.Date {
	var out []jalali.Date
	for _, r := range records {
		if r == nil || !r.DeliveryDate.Valid {
			continue
		}
		d, err := jalali.Parse(r.DeliveryDate.String)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}
