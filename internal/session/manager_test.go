package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"order-desk/internal/events"
	"order-desk/internal/repositories"
	"order-desk/pkg/constants"
	"order-desk/pkg/cryptoblob"
	"order-desk/pkg/eventbus"
	apperrors "order-desk/pkg/errors"
	"order-desk/pkg/service"
)

type fakeRefresher struct {
	token string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeRefresher) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.token, f.err
}

type fixture struct {
	store     *repositories.MemoryCredentialRepository
	cipher    *cryptoblob.Cipher
	bus       *eventbus.Bus
	refresher *fakeRefresher
	manager   *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     repositories.NewMemoryCredentialRepository(),
		cipher:    cryptoblob.New("TET4-1"),
		bus:       eventbus.New(zap.NewNop()),
		refresher: &fakeRefresher{},
	}
	f.manager = NewManager(f.store, f.cipher, service.NewJWTService(), f.refresher, f.bus, nil, zap.NewNop())
	return f
}

func mustToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := service.GenerateToken("server-secret", 1, exp)
	require.NoError(t, err)
	return tok
}

func TestManager_ValidTokenIsReturnedAsIs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := mustToken(t, time.Now().Add(time.Hour))
	require.NoError(t, f.manager.Save(ctx, Credential{AccessToken: tok, RefreshToken: "r", Role: constants.RolePrinter}))

	got, err := f.manager.GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
	assert.Equal(t, int32(0), f.refresher.calls.Load())
}

func TestManager_ExpiredTokenRefreshedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fresh := mustToken(t, time.Now().Add(time.Hour))
	f.refresher.token = fresh
	f.refresher.delay = 50 * time.Millisecond

	require.NoError(t, f.manager.Save(ctx, Credential{
		AccessToken:  mustToken(t, time.Now().Add(-10*time.Second)),
		RefreshToken: "r",
		Role:         constants.RoleReception,
	}))

	var wg sync.WaitGroup
	results := make([]string, 10)
	errs := make([]error, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.manager.GetValidToken(ctx)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, fresh, results[i])
	}
	assert.Equal(t, int32(1), f.refresher.calls.Load())

	// новый токен сохранён в хранилище
	got, err := f.manager.GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, int32(1), f.refresher.calls.Load())
}

func TestManager_NoCredential(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.GetValidToken(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoCredential)
	assert.Equal(t, int32(0), f.refresher.calls.Load())
}

func TestManager_RefreshFailureExpiresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.refresher.err = errors.New("refresh rejected")

	expired := make(chan events.SessionExpiredEvent, 1)
	f.bus.Subscribe(events.SessionExpired, func(_ context.Context, e eventbus.Event) error {
		expired <- e.(events.SessionExpiredEvent)
		return nil
	})

	require.NoError(t, f.manager.Save(ctx, Credential{
		AccessToken:  mustToken(t, time.Now().Add(-time.Minute)),
		RefreshToken: "r",
	}))

	_, err := f.manager.GetValidToken(ctx)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	select {
	case e := <-expired:
		assert.Error(t, e.Reason)
	case <-time.After(time.Second):
		t.Fatal("событие session.expired не опубликовано")
	}
}

func TestManager_MalformedTokenTriggersRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fresh := mustToken(t, time.Now().Add(time.Hour))
	f.refresher.token = fresh

	require.NoError(t, f.manager.Save(ctx, Credential{AccessToken: "not-a-jwt", RefreshToken: "r"}))

	got, err := f.manager.GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, int32(1), f.refresher.calls.Load())

	t.Run("повреждённый блоб", func(t *testing.T) {
		require.NoError(t, f.store.Set(ctx, constants.KeyAuthToken, "%%%garbage"))
		got, err := f.manager.GetValidToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, fresh, got)
	})
}

func TestManager_Role(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Role(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoCredential)

	require.NoError(t, f.manager.Save(ctx, Credential{AccessToken: "a", RefreshToken: "r", Role: constants.RolePrinter}))
	role, err := f.manager.Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, constants.RolePrinter, role)

	// веб-клиент мог сохранить роль числом
	blob, err := f.cipher.EncryptJSON(5)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, constants.KeyRole, blob))
	role, err = f.manager.Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleDelivery, role)

	blob, err = f.cipher.EncryptJSON([]int{})
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, constants.KeyRole, blob))
	_, err = f.manager.Role(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnknownRole)
}

func TestManager_WatchPublishesChanges(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 4)
	f.bus.Subscribe(events.CredentialChanged, func(_ context.Context, e eventbus.Event) error {
		changed <- e.(events.CredentialChangedEvent).Key
		return nil
	})
	require.NoError(t, f.manager.Watch(ctx))

	require.NoError(t, f.store.Set(ctx, constants.KeyRole, "x"))
	select {
	case key := <-changed:
		assert.Equal(t, constants.KeyRole, key)
	case <-time.After(time.Second):
		t.Fatal("событие credential.changed не опубликовано")
	}
}

func TestManager_Clear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.manager.Save(ctx, Credential{AccessToken: "a", RefreshToken: "r", Role: 1}))
	require.NoError(t, f.manager.Clear(ctx))

	_, err := f.manager.GetValidToken(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoCredential)
}

func TestManager_WatchReportsRemoval(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan events.CredentialChangedEvent, 8)
	f.bus.Subscribe(events.CredentialChanged, func(_ context.Context, e eventbus.Event) error {
		changed <- e.(events.CredentialChangedEvent)
		return nil
	})
	require.NoError(t, f.manager.Watch(ctx))

	require.NoError(t, f.store.Set(ctx, constants.KeyAuthToken, "x"))
	require.NoError(t, f.store.Del(ctx, constants.KeyAuthToken))

	var got []events.CredentialChangedEvent
	for len(got) < 2 {
		select {
		case e := <-changed:
			got = append(got, e)
		case <-time.After(time.Second):
			t.Fatalf("получено событий: %d", len(got))
		}
	}
	assert.Contains(t, got, events.CredentialChangedEvent{Key: constants.KeyAuthToken, Removed: true})
}
