package listeners

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"order-desk/internal/events"
	"order-desk/pkg/eventbus"
)

func TestNotificationListener_CollectsActionResults(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	l := NewNotificationListener(zap.NewNop())
	l.Register(bus)
	defer l.Unregister()

	ctx := context.Background()
	bus.Publish(ctx, events.OrderActionEvent{Screen: "printer", Action: events.ActionAdvance, OrderID: 5, NewStatus: "Delivery"})
	require.Eventually(t, func() bool { return len(l.Recent(0)) == 1 }, time.Second, 5*time.Millisecond)

	bus.Publish(ctx, events.OrderActionEvent{Screen: "printer", Action: events.ActionAdvance, OrderID: 6, Err: errors.New("boom")})
	require.Eventually(t, func() bool { return len(l.Recent(0)) == 2 }, time.Second, 5*time.Millisecond)

	got := l.Recent(0)
	assert.Equal(t, LevelError, got[0].Level)
	assert.Equal(t, int64(6), got[0].OrderID)
	assert.Equal(t, LevelSuccess, got[1].Level)
	assert.Contains(t, got[1].Message, "Delivery")
}

func TestNotificationListener_LimitsHistory(t *testing.T) {
	l := NewNotificationListener(zap.NewNop())
	l.limit = 3
	for i := 1; i <= 5; i++ {
		l.push(Notification{Level: LevelSuccess, OrderID: int64(i)})
	}

	got := l.Recent(0)
	require.Len(t, got, 3)
	assert.Equal(t, int64(5), got[0].OrderID)
	assert.Equal(t, int64(3), got[2].OrderID)
	assert.Len(t, l.Recent(1), 1)
}
