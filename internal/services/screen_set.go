package services

import (
	"fmt"

	"order-desk/internal/dto"
	"order-desk/internal/entities"
	"order-desk/pkg/api"
	"order-desk/pkg/constants"
	apperrors "order-desk/pkg/errors"
	"order-desk/pkg/jalali"
)

// ScreenSet держит по одному контроллеру списка на экран.
type ScreenSet struct {
	screens     map[string]Screen
	controllers map[string]*OrderListController
}

func NewScreenSet(screens map[string]Screen, deps ControllerDeps) *ScreenSet {
	set := &ScreenSet{
		screens:     screens,
		controllers: make(map[string]*OrderListController, len(screens)),
	}
	for name, screen := range screens {
		set.controllers[name] = NewOrderListController(screen, deps)
	}
	return set
}

func (s *ScreenSet) Get(name string) (*OrderListController, error) {
	c, ok := s.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: экран %q", apperrors.ErrNotFound, name)
	}
	return c, nil
}

func (s *ScreenSet) Screens() []Screen {
	names := ScreenNames(s.screens)
	out := make([]Screen, 0, len(names))
	for _, n := range names {
		out = append(out, s.screens[n])
	}
	return out
}

func (s *ScreenSet) Close() {
	for _, c := range s.controllers {
		c.Close()
	}
}

// ListView переводит снимок экрана в строки таблицы. Цены без записи показываются как N/A,
// итоги появляются только после загрузки цен.
func ListView(snap Snapshot) dto.ListViewDTO {
	view := dto.ListViewDTO{
		Screen:       snap.Screen,
		State:        string(snap.State),
		Rows:         make([]dto.OrderViewDTO, 0, len(snap.Orders)),
		Total:        snap.Total,
		Enriched:     snap.Enriched,
		EmptyMessage: snap.EmptyMessage,
		FieldErrors:  snap.FieldErrors,
		Warnings:     snap.Warnings,
	}
	if d := snap.Descriptor; d.PageSize > 0 {
		view.Pagination = api.NewPaginationMeta(uint64(snap.Total), d.Page, d.PageSize)
	}
	if snap.Err != nil {
		view.Error = snap.Err.Error()
	}

	records := make([]*entities.PriceRecord, 0, len(snap.Orders))
	for _, o := range snap.Orders {
		row := dto.OrderViewDTO{
			ID:            o.ID,
			SecretKey:     o.SecretKey,
			CustomerName:  o.CustomerName,
			OrderName:     o.OrderName,
			CategoryID:    o.CategoryID,
			Designer:      o.DesignerName(),
			Status:        o.Status,
			Price:         constants.SentinelNA,
			ReceivePrice:  constants.SentinelNA,
			ReminderPrice: constants.SentinelNA,
			DeliveryDate:  constants.SentinelNA,
		}
		if !o.CreatedAt.IsZero() {
			row.CreatedAt = jalali.FromTime(o.CreatedAt).String()
		}
		if rec := snap.Prices[o.ID]; rec != nil {
			records = append(records, rec)
			row.Price = naIfMissing(rec.Price)
			row.ReceivePrice = naIfMissing(rec.ReceivePrice)
			row.ReminderPrice = naIfMissing(rec.ReminderPrice)
			if rec.DeliveryDate.Valid && rec.DeliveryDate.String != "" {
				row.DeliveryDate = rec.DeliveryDate.String
			}
		}
		view.Rows = append(view.Rows, row)
	}

	if snap.Enriched {
		t := SumTotals(records)
		view.Totals = &dto.TotalsDTO{
			Price:         t.Price.StringFixed(2),
			ReceivePrice:  t.ReceivePrice.StringFixed(2),
			ReminderPrice: t.ReminderPrice.StringFixed(2),
		}
	}
	return view
}

func naIfMissing(a entities.Amount) string {
	if !a.Valid {
		return constants.SentinelNA
	}
	return a.String()
}
