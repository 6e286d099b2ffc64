package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-desk/internal/dto"
	"order-desk/internal/entities"
	"order-desk/internal/integrations"
	"order-desk/pkg/constants"
	apperrors "order-desk/pkg/errors"
)

type BillServiceInterface interface {
	Compose(ctx context.Context, orderIDs []int64) (*dto.BillDTO, error)
	ComposeFromSnapshot(ctx context.Context, s Snapshot) (*dto.BillDTO, error)
}

// BillService собирает счёт только из полностью загруженного набора заказов и цен.
type BillService struct {
	backend    integrations.OrderBackend
	aggregator AggregationServiceInterface
	categories CategoryServiceInterface
	logger     *zap.Logger
}

func NewBillService(
	backend integrations.OrderBackend,
	aggregator AggregationServiceInterface,
	categories CategoryServiceInterface,
	logger *zap.Logger,
) BillServiceInterface {
	return &BillService{
		backend:    backend,
		aggregator: aggregator,
		categories: categories,
		logger:     logger.Named("bill"),
	}
}

func (s *BillService) Compose(ctx context.Context, orderIDs []int64) (*dto.BillDTO, error) {
	if len(orderIDs) == 0 {
		return nil, apperrors.NewValidationError("ids", "не выбран ни один заказ")
	}

	orders := make([]entities.Order, len(orderIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range orderIDs {
		i, id := i, id
		g.Go(func() error {
			o, err := s.backend.GetOrder(gctx, id)
			if err != nil {
				return fmt.Errorf("заказ %d: %w", id, err)
			}
			orders[i] = *o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lookups := s.aggregator.Lookup(ctx, orders)
	records := make(map[int64]*entities.PriceRecord, len(lookups))
	var failed []int64
	for _, l := range lookups {
		if l.Err != nil {
			failed = append(failed, l.OrderID)
			continue
		}
		records[l.OrderID] = l.Record
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("%w: заказы %v", apperrors.ErrBillIncomplete, failed)
	}

	return s.build(ctx, orders, records), nil
}

// ComposeFromSnapshot строит счёт по текущей странице экрана, если все её цены загружены без ошибок.
func (s *BillService) ComposeFromSnapshot(ctx context.Context, snap Snapshot) (*dto.BillDTO, error) {
	if !snap.Enriched {
		return nil, apperrors.ErrBillIncomplete
	}
	if len(snap.PriceErrors) > 0 {
		failed := make([]int64, 0, len(snap.PriceErrors))
		for id := range snap.PriceErrors {
			failed = append(failed, id)
		}
		slices.Sort(failed)
		return nil, fmt.Errorf("%w: заказы %v", apperrors.ErrBillIncomplete, failed)
	}
	if len(snap.Orders) == 0 {
		return nil, apperrors.NewValidationError("ids", "не выбран ни один заказ")
	}
	return s.build(ctx, snap.Orders, snap.Prices), nil
}

func (s *BillService) build(ctx context.Context, orders []entities.Order, prices map[int64]*entities.PriceRecord) *dto.BillDTO {
	names := s.categoryNames(ctx)

	bill := &dto.BillDTO{
		CustomerName: orders[0].CustomerName,
		Rows:         make([]dto.BillRowDTO, 0, len(orders)),
		Orders:       orders,
	}
	records := make([]*entities.PriceRecord, 0, len(orders))
	for _, o := range orders {
		rec := prices[o.ID]
		records = append(records, rec)

		row := dto.BillRowDTO{
			SecretKey:     o.SecretKey,
			OrderName:     o.OrderName,
			Category:      orUnknown(names[o.CategoryID]),
			Designer:      orUnknown(o.DesignerName()),
			Price:         constants.SentinelUnknown,
			ReceivePrice:  constants.SentinelUnknown,
			ReminderPrice: constants.SentinelUnknown,
		}
		if rec != nil {
			row.Price = rec.Price.String()
			row.ReceivePrice = rec.ReceivePrice.String()
			row.ReminderPrice = rec.ReminderPrice.String()
		}
		bill.Rows = append(bill.Rows, row)
	}

	totals := SumTotals(records)
	bill.Totals = dto.TotalsDTO{
		Price:         totals.Price.StringFixed(2),
		ReceivePrice:  totals.ReceivePrice.StringFixed(2),
		ReminderPrice: totals.ReminderPrice.StringFixed(2),
	}
	bill.ReceivedAt = EarliestDate(ReceivedDates(records)).String()
	bill.DueAt = LatestDate(DeliveryDates(records)).String()
	return bill
}

func (s *BillService) categoryNames(ctx context.Context) map[int64]string {
	list, err := s.categories.Categories(ctx)
	if err != nil {
		s.logger.Warn("Не удалось загрузить категории для счёта", zap.Error(err))
		return nil
	}
	names := make(map[int64]string, len(list))
	for _, c := range list {
		names[c.ID] = c.Name
	}
	return names
}

func orUnknown(s string) string {
	if s == "" {
		return constants.SentinelUnknown
	}
	return s
}
