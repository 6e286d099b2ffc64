package listeners

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-desk/internal/events"
	"order-desk/pkg/eventbus"
)

const defaultNotificationLimit = 100

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelWarning NotificationLevel = "warning"
)

// Notification - сообщение для пользователя об итоге действия.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	Level     NotificationLevel `json:"level"`
	Screen    string            `json:"screen,omitempty"`
	OrderID   int64             `json:"order_id,omitempty"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// NotificationListener собирает последние уведомления; шлюз отдаёт их экрану.
type NotificationListener struct {
	logger *zap.Logger
	limit  int

	mu    sync.Mutex
	items []Notification

	unsubscribe []func()
}

func NewNotificationListener(logger *zap.Logger) *NotificationListener {
	return &NotificationListener{
		logger: logger.Named("notifications"),
		limit:  defaultNotificationLimit,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	l.unsubscribe = append(l.unsubscribe,
		bus.Subscribe(events.OrderActionSucceed, l.handleOrderAction),
		bus.Subscribe(events.OrderActionFailed, l.handleOrderAction),
		bus.Subscribe(events.SessionExpired, l.handleSessionExpired),
	)
	l.logger.Info("NotificationListener подписан на события действий и сессии")
}

func (l *NotificationListener) Unregister() {
	for _, u := range l.unsubscribe {
		u()
	}
	l.unsubscribe = nil
}

func (l *NotificationListener) handleOrderAction(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderActionEvent)
	if !ok {
		return nil
	}

	n := Notification{Screen: e.Screen, OrderID: e.OrderID}
	switch {
	case e.Err != nil:
		n.Level = LevelError
		n.Message = fmt.Sprintf("Заказ №%d: действие %s не выполнено: %v", e.OrderID, e.Action, e.Err)
	case e.Action == events.ActionAdvance:
		n.Level = LevelSuccess
		n.Message = fmt.Sprintf("Заказ №%d переведён на этап %s", e.OrderID, e.NewStatus)
	default:
		n.Level = LevelSuccess
		n.Message = fmt.Sprintf("Заказ №%d: остаток оплачен", e.OrderID)
	}
	l.push(n)
	return nil
}

func (l *NotificationListener) handleSessionExpired(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.SessionExpiredEvent)
	if !ok {
		return nil
	}
	msg := "Сессия истекла, войдите заново"
	if e.Reason != nil {
		l.logger.Warn("Сессия истекла", zap.Error(e.Reason))
	}
	l.push(Notification{Level: LevelWarning, Message: msg})
	return nil
}

func (l *NotificationListener) push(n Notification) {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
	if over := len(l.items) - l.limit; over > 0 {
		l.items = append([]Notification(nil), l.items[over:]...)
	}
	l.logger.Debug("Уведомление", zap.String("level", string(n.Level)), zap.String("message", n.Message))
}

// Recent возвращает уведомления от новых к старым.
func (l *NotificationListener) Recent(limit int) []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.items) {
		limit = len(l.items)
	}
	out := make([]Notification, 0, limit)
	for i := len(l.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.items[i])
	}
	return out
}
