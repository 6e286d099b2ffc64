package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"order-desk/internal/dto"
	"order-desk/internal/entities"
	"order-desk/internal/events"
	"order-desk/internal/integrations"
	"order-desk/internal/metrics"
	"order-desk/internal/repositories"
	"order-desk/pkg/constants"
	"order-desk/pkg/debounce"
	"order-desk/pkg/eventbus"
	apperrors "order-desk/pkg/errors"
)

type ListState string

const (
	StateIdle    ListState = "idle"
	StateLoading ListState = "loading"
	StateReady   ListState = "ready"
	StateError   ListState = "error"
)

const (
	EmptyMessageNoMatch   = "هیچ سفارشی مطابق با جستجوی شما یافت نشد."
	EmptyMessageNoRecords = "هیچ سفارشی یافت نشد."
)

// RoleSource отдаёт роль текущего пользователя.
type RoleSource interface {
	Role(ctx context.Context) (constants.Role, error)
}

// Snapshot - согласованный срез состояния контроллера.
type Snapshot struct {
	Screen       string
	State        ListState
	Descriptor   dto.QueryDescriptor
	Orders       []entities.Order
	Total        int
	Prices       map[int64]*entities.PriceRecord
	// Заказы, цену которых загрузить не удалось (в Prices у них nil)
	PriceErrors  map[int64]error
	Enriched     bool
	Err          error
	FieldErrors  map[string]string
	Warnings     []string
	EmptyMessage string
}

// criteria - поиск и диапазон дат, вводимые пользователем.
type criteria struct {
	search    string
	startDate string
	endDate   string
}

type ControllerDeps struct {
	Backend    integrations.OrderBackend
	Builder    QueryBuilderInterface
	Aggregator AggregationServiceInterface
	Roles      RoleSource
	Categories CategoryServiceInterface
	Bus        *eventbus.Bus
	Metrics    *metrics.Metrics
	Logger     *zap.Logger

	Debounce       time.Duration
	RequestTimeout time.Duration
}

// OrderListController ведёт один экран списка: текущий дескриптор, страницу заказов и их цены.
// Ответы устаревших запросов отбрасываются по номеру запроса.
type OrderListController struct {
	screen     Screen
	backend    integrations.OrderBackend
	builder    QueryBuilderInterface
	aggregator AggregationServiceInterface
	roles      RoleSource
	categories CategoryServiceInterface
	bus        *eventbus.Bus
	metrics    *metrics.Metrics
	logger     *zap.Logger
	timeout    time.Duration

	// контекст фоновых загрузок после паузы ввода
	baseCtx context.Context
	cancel  context.CancelFunc

	debouncer   *debounce.Debouncer[criteria]
	unsubscribe func()

	mu          sync.Mutex
	seq         uint64
	applied     criteria
	pending     criteria
	page        int
	descriptor  dto.QueryDescriptor
	state       ListState
	orders      []entities.Order
	total       int
	prices      map[int64]*entities.PriceRecord
	priceErrors map[int64]error
	enriched    bool
	err         error
	fieldErrors map[string]string
	warnings    []string
}

func NewOrderListController(screen Screen, deps ControllerDeps) *OrderListController {
	if deps.Categories == nil {
		deps.Categories = NewCategoryService(deps.Backend, repositories.NewMemoryCacheRepository(), DefaultCategoryTTL, deps.Logger)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &OrderListController{
		screen:     screen,
		backend:    deps.Backend,
		builder:    deps.Builder,
		aggregator: deps.Aggregator,
		roles:      deps.Roles,
		categories: deps.Categories,
		bus:        deps.Bus,
		metrics:    deps.Metrics,
		logger:     deps.Logger.Named("list").With(zap.String("screen", screen.Name)),
		timeout:    deps.RequestTimeout,
		baseCtx:    ctx,
		cancel:     cancel,
		page:       1,
		state:      StateIdle,
	}
	c.debouncer = debounce.New(deps.Debounce, c.applyCriteria)
	if c.bus != nil {
		c.unsubscribe = c.bus.Subscribe(events.CredentialChanged, c.onCredentialChanged)
	}
	return c
}

// Load строит дескриптор из текущего ввода и загружает страницу.
func (c *OrderListController) Load(ctx context.Context) (*dto.OrderPage, error) {
	c.mu.Lock()
	crit, page := c.applied, c.page
	c.mu.Unlock()

	res, err := c.describe(ctx, crit, page)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	return c.fetch(ctx, res.Descriptor, res.FieldErrors, res.Warnings)
}

// Fetch выполняет запрос по дескриптору и делает его текущим.
// Если за время запроса был выдан более новый, возвращается apperrors.ErrSuperseded и состояние не меняется.
func (c *OrderListController) Fetch(ctx context.Context, d dto.QueryDescriptor) (*dto.OrderPage, error) {
	return c.fetch(ctx, d, nil, nil)
}

// fetch делает дескриптор текущим вместе с его ошибками полей и предупреждениями.
func (c *OrderListController) fetch(ctx context.Context, d dto.QueryDescriptor, fieldErrors map[string]string, warnings []string) (*dto.OrderPage, error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.descriptor = d
	c.fieldErrors = fieldErrors
	c.warnings = warnings
	c.state = StateLoading
	c.mu.Unlock()

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.backend.ListOrders(reqCtx, d)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.metrics.Superseded(c.screen.Name)
		c.logger.Debug("Ответ устарел и отброшен", zap.Uint64("seq", seq))
		return nil, apperrors.ErrSuperseded
	}
	if err != nil {
		c.clearLocked(err)
		c.mu.Unlock()
		c.logger.Warn("Не удалось загрузить список", zap.Error(err))
		return nil, err
	}
	c.orders = resp.Results
	c.total = resp.Count
	c.prices = nil
	c.priceErrors = nil
	c.enriched = false
	c.err = nil
	c.state = StateReady
	orders := append([]entities.Order(nil), resp.Results...)
	c.mu.Unlock()

	page := &dto.OrderPage{Orders: orders, Total: resp.Count}
	if !c.screen.WithPrices {
		return page, nil
	}

	lookups := c.aggregator.Lookup(reqCtx, orders)
	prices := make(map[int64]*entities.PriceRecord, len(lookups))
	var priceErrors map[int64]error
	for _, l := range lookups {
		prices[l.OrderID] = l.Record
		if l.Err != nil {
			if priceErrors == nil {
				priceErrors = make(map[int64]error)
			}
			priceErrors[l.OrderID] = l.Err
		}
	}
	c.mu.Lock()
	if seq == c.seq {
		c.prices = prices
		c.priceErrors = priceErrors
		c.enriched = true
	}
	c.mu.Unlock()
	return page, nil
}

// SetSearch меняет строку поиска. Запрос уйдёт после паузы ввода, со страницы 1.
func (c *OrderListController) SetSearch(search string) {
	c.mu.Lock()
	c.pending.search = search
	crit := c.pending
	c.mu.Unlock()
	c.debouncer.Push(crit)
}

// SetDateRange меняет диапазон дат (джалали). Запрос уйдёт после паузы ввода, со страницы 1.
func (c *OrderListController) SetDateRange(startDate, endDate string) {
	c.mu.Lock()
	c.pending.startDate = startDate
	c.pending.endDate = endDate
	crit := c.pending
	c.mu.Unlock()
	c.debouncer.Push(crit)
}

// Apply задаёт поиск, даты и страницу сразу, отбрасывая отложенный ввод.
func (c *OrderListController) Apply(ctx context.Context, search, startDate, endDate string, page int) (*dto.OrderPage, error) {
	c.debouncer.Cancel()
	crit := criteria{search: search, startDate: startDate, endDate: endDate}

	c.mu.Lock()
	c.pending = crit
	c.applied = crit
	c.page = page
	c.mu.Unlock()
	return c.Load(ctx)
}

// FlushCriteria применяет отложенный ввод немедленно.
func (c *OrderListController) FlushCriteria() bool {
	return c.debouncer.Flush()
}

// SetPage переходит на страницу сразу, сохраняя поиск и даты.
func (c *OrderListController) SetPage(ctx context.Context, page int) (*dto.OrderPage, error) {
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return c.Load(ctx)
}

// Refresh повторяет текущий дескриптор.
func (c *OrderListController) Refresh(ctx context.Context) (*dto.OrderPage, error) {
	c.mu.Lock()
	d := c.descriptor
	c.mu.Unlock()
	if d.Resource == "" {
		return c.Load(ctx)
	}
	return c.Fetch(ctx, d)
}

// Reset сбрасывает экран в исходное состояние, не трогая введённые критерии.
// Ответы запросов, выданных до сброса, отбрасываются.
func (c *OrderListController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.descriptor = dto.QueryDescriptor{}
	c.orders = nil
	c.total = 0
	c.prices = nil
	c.priceErrors = nil
	c.enriched = false
	c.err = nil
	c.fieldErrors = nil
	c.warnings = nil
	c.state = StateIdle
}

func (c *OrderListController) applyCriteria(crit criteria) {
	c.mu.Lock()
	c.applied = crit
	c.page = 1
	c.mu.Unlock()

	if _, err := c.Load(c.baseCtx); err != nil && !errors.Is(err, apperrors.ErrSuperseded) {
		c.logger.Debug("Загрузка после ввода завершилась ошибкой", zap.Error(err))
	}
}

func (c *OrderListController) describe(ctx context.Context, crit criteria, page int) (*dto.BuildResult, error) {
	resource := c.screen.Resource
	var roleName string
	if c.screen.RoleDriven {
		role, err := c.roles.Role(ctx)
		if err != nil {
			return nil, err
		}
		resource, roleName, err = c.screen.ResolveResource(role)
		if err != nil {
			return nil, err
		}
	}

	raw := dto.RawQueryDTO{
		Search:    crit.search,
		StartDate: crit.startDate,
		EndDate:   crit.endDate,
		Page:      page,
		PageSize:  c.screen.PageSize,
		Resource:  resource,
		RoleName:  roleName,
	}
	if c.screen.CategoryList != "" {
		raw.CategoryList = null.StringFrom(c.screen.CategoryList)
	}

	return c.builder.Build(raw)
}

// fail переводит экран в ошибку без сетевого запроса (неверный ввод, неизвестная роль).
func (c *OrderListController) fail(err error) {
	c.mu.Lock()
	c.seq++
	c.fieldErrors = nil
	c.warnings = nil
	c.clearLocked(err)
	c.mu.Unlock()
}

func (c *OrderListController) clearLocked(err error) {
	c.orders = nil
	c.total = 0
	c.prices = nil
	c.priceErrors = nil
	c.enriched = false
	c.err = err
	c.state = StateError
}

// Advance переводит заказ на следующий этап его категории и перезагружает текущую страницу.
// Для последнего этапа возвращает apperrors.ErrNoNextStage без запроса к серверу.
func (c *OrderListController) Advance(ctx context.Context, order entities.Order) (*entities.Order, error) {
	cat, err := c.category(ctx, order.CategoryID)
	if err != nil {
		return nil, err
	}
	next, ok := cat.NextStage(order.Status)
	if !ok {
		return nil, fmt.Errorf("%w: заказ %d на этапе %q", apperrors.ErrNoNextStage, order.ID, order.Status)
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	err = c.backend.UpdateStatus(reqCtx, order.ID, next)
	c.publish(ctx, events.OrderActionEvent{
		Screen: c.screen.Name, Action: events.ActionAdvance, OrderID: order.ID, NewStatus: next, Err: err,
	})
	if err != nil {
		return nil, err
	}

	c.refreshAfterAction(ctx)
	order.Status = next
	return &order, nil
}

// AdvanceByID ищет заказ на текущей странице, иначе запрашивает его у сервера.
func (c *OrderListController) AdvanceByID(ctx context.Context, orderID int64) (*entities.Order, error) {
	order, err := c.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return c.Advance(ctx, *order)
}

// CompleteRemainder закрывает остаток оплаты заказа и перезагружает текущую страницу.
func (c *OrderListController) CompleteRemainder(ctx context.Context, orderID int64) (*dto.RemainderCompletedDTO, error) {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.backend.CompleteRemainder(reqCtx, orderID)
	c.publish(ctx, events.OrderActionEvent{
		Screen: c.screen.Name, Action: events.ActionCompleteRemainder, OrderID: orderID, Err: err,
	})
	if err != nil {
		return nil, err
	}
	c.refreshAfterAction(ctx)
	return res, nil
}

func (c *OrderListController) refreshAfterAction(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil && !errors.Is(err, apperrors.ErrSuperseded) {
		c.logger.Warn("Не удалось обновить список после действия", zap.Error(err))
	}
}

func (c *OrderListController) findOrder(ctx context.Context, orderID int64) (*entities.Order, error) {
	c.mu.Lock()
	for _, o := range c.orders {
		if o.ID == orderID {
			c.mu.Unlock()
			return &o, nil
		}
	}
	c.mu.Unlock()

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.backend.GetOrder(reqCtx, orderID)
}

func (c *OrderListController) category(ctx context.Context, id int64) (entities.Category, error) {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.categories.Category(reqCtx, id)
}

// Snapshot возвращает копию состояния.
func (c *OrderListController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Screen:      c.screen.Name,
		State:       c.state,
		Descriptor:  c.descriptor,
		Orders:      append([]entities.Order(nil), c.orders...),
		Total:       c.total,
		Prices:      maps.Clone(c.prices),
		PriceErrors: maps.Clone(c.priceErrors),
		Enriched:    c.enriched,
		Err:         c.err,
		FieldErrors: maps.Clone(c.fieldErrors),
		Warnings:    append([]string(nil), c.warnings...),
	}
	if c.state == StateReady && len(c.orders) == 0 {
		if c.descriptor.FilterActive() {
			s.EmptyMessage = EmptyMessageNoMatch
		} else {
			s.EmptyMessage = EmptyMessageNoRecords
		}
	}
	return s
}

func (c *OrderListController) Screen() Screen { return c.screen }

// Close отменяет отложенный ввод и фоновые загрузки.
func (c *OrderListController) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.debouncer.Close()
	c.cancel()
}

// onCredentialChanged: выход очищает экран, смена роли перезагружает экраны, зависящие от роли.
func (c *OrderListController) onCredentialChanged(ctx context.Context, e eventbus.Event) error {
	ev, ok := e.(events.CredentialChangedEvent)
	if !ok {
		return nil
	}
	switch {
	case ev.Key == constants.KeyAuthToken && ev.Removed:
		c.logger.Info("Сессия удалена, экран очищен")
		c.Reset()
	case ev.Key == constants.KeyRole && !ev.Removed && c.screen.RoleDriven:
		c.mu.Lock()
		loaded := c.state != StateIdle
		c.mu.Unlock()
		if !loaded {
			return nil
		}
		c.logger.Info("Роль изменена, список перезагружается")
		if _, err := c.Load(ctx); err != nil && !errors.Is(err, apperrors.ErrSuperseded) {
			return fmt.Errorf("перезагрузка после смены роли: %w", err)
		}
	}
	return nil
}

func (c *OrderListController) publish(ctx context.Context, e events.OrderActionEvent) {
	if c.bus != nil {
		c.bus.Publish(ctx, e)
	}
}

func (c *OrderListController) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
