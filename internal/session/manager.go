// Package session хранит учётные данные пользователя и следит за сроком действия токена доступа.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"order-desk/internal/events"
	"order-desk/internal/metrics"
	"order-desk/internal/repositories"
	"order-desk/pkg/constants"
	"order-desk/pkg/cryptoblob"
	"order-desk/pkg/eventbus"
	apperrors "order-desk/pkg/errors"
	"order-desk/pkg/service"
)

// Refresher обменивает токен обновления на новый токен доступа.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Credential - учётные данные в открытом виде.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Role         constants.Role
}

type Manager struct {
	store     repositories.CredentialRepositoryInterface
	cipher    *cryptoblob.Cipher
	jwt       service.JWTService
	refresher Refresher
	bus       *eventbus.Bus
	metrics   *metrics.Metrics
	logger    *zap.Logger

	refreshGroup singleflight.Group
	now          func() time.Time
}

func NewManager(
	store repositories.CredentialRepositoryInterface,
	cipher *cryptoblob.Cipher,
	jwt service.JWTService,
	refresher Refresher,
	bus *eventbus.Bus,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		store:     store,
		cipher:    cipher,
		jwt:       jwt,
		refresher: refresher,
		bus:       bus,
		metrics:   m,
		logger:    logger.Named("session"),
		now:       time.Now,
	}
}

// GetValidToken возвращает действующий токен доступа, обновляя истёкший.
// Одновременные обновления схлопываются в один запрос к серверу.
func (m *Manager) GetValidToken(ctx context.Context) (string, error) {
	token, err := m.readString(ctx, constants.KeyAuthToken)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "", apperrors.ErrNoCredential
	case errors.Is(err, cryptoblob.ErrMalformed):
		// нечитаемый блоб равносилен истёкшему токену
		m.logger.Warn("Блоб токена доступа повреждён, пробуем обновить", zap.Error(err))
		token = ""
	case err != nil:
		return "", err
	}

	if token != "" && !m.jwt.IsExpired(token, m.now()) {
		return token, nil
	}

	v, err, shared := m.refreshGroup.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		m.logger.Debug("Токен получен из общего обновления")
	}
	return v.(string), nil
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	// другой вызов мог уже сохранить свежий токен
	if current, err := m.readString(ctx, constants.KeyAuthToken); err == nil && current != "" && !m.jwt.IsExpired(current, m.now()) {
		return current, nil
	}

	refreshToken, err := m.readString(ctx, constants.KeyRefreshToken)
	if err != nil {
		return "", m.expire(ctx, fmt.Errorf("токен обновления недоступен: %w", err))
	}

	access, err := m.refresher.RefreshToken(ctx, refreshToken)
	m.metrics.TokenRefreshed(err)
	if err != nil {
		return "", m.expire(ctx, err)
	}

	if err := m.writeJSON(ctx, constants.KeyAuthToken, access); err != nil {
		// токен рабочий, просто не сохранится до следующего обновления
		m.logger.Error("Не удалось сохранить обновлённый токен", zap.Error(err))
	}
	m.logger.Info("Токен доступа обновлён")
	return access, nil
}

// expire публикует событие истечения сессии и возвращает ErrSessionExpired.
func (m *Manager) expire(ctx context.Context, reason error) error {
	m.logger.Warn("Сессия истекла", zap.Error(reason))
	if m.bus != nil {
		m.bus.Publish(ctx, events.SessionExpiredEvent{Reason: reason})
	}
	return fmt.Errorf("%w: %v", apperrors.ErrSessionExpired, reason)
}

// Role читает роль пользователя. Роль хранится числом или массивом из одного числа.
func (m *Manager) Role(ctx context.Context) (constants.Role, error) {
	blob, err := m.store.Get(ctx, constants.KeyRole)
	if errors.Is(err, apperrors.ErrNotFound) {
		return 0, apperrors.ErrNoCredential
	}
	if err != nil {
		return 0, err
	}

	var raw json.RawMessage
	if err := m.cipher.DecryptJSON(blob, &raw); err != nil {
		return 0, fmt.Errorf("ошибка чтения роли: %w", err)
	}
	return decodeRole(raw)
}

func decodeRole(raw json.RawMessage) (constants.Role, error) {
	var single int
	if err := json.Unmarshal(raw, &single); err == nil {
		return constants.Role(single), nil
	}
	var list []int
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return 0, fmt.Errorf("%w: значение %s", apperrors.ErrUnknownRole, raw)
	}
	return constants.Role(list[0]), nil
}

// Save сохраняет все учётные данные после входа.
func (m *Manager) Save(ctx context.Context, c Credential) error {
	if err := m.writeJSON(ctx, constants.KeyAuthToken, c.AccessToken); err != nil {
		return err
	}
	if err := m.writeJSON(ctx, constants.KeyRefreshToken, c.RefreshToken); err != nil {
		return err
	}
	// роль пишем массивом, как это делает веб-клиент
	return m.writeJSON(ctx, constants.KeyRole, []int{int(c.Role)})
}

// Clear удаляет учётные данные (выход).
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Del(ctx, constants.KeyAuthToken, constants.KeyRefreshToken, constants.KeyRole)
}

// Watch публикует credential.changed на каждое изменение хранилища, пока ctx не отменён.
func (m *Manager) Watch(ctx context.Context) error {
	changes, err := m.store.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for key := range changes {
			_, err := m.store.Get(ctx, key)
			removed := errors.Is(err, apperrors.ErrNotFound)
			m.logger.Debug("Учётные данные изменены", zap.String("key", key), zap.Bool("removed", removed))
			if m.bus != nil {
				m.bus.Publish(ctx, events.CredentialChangedEvent{Key: key, Removed: removed})
			}
		}
	}()
	return nil
}

func (m *Manager) readString(ctx context.Context, key string) (string, error) {
	blob, err := m.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	var s string
	if err := m.cipher.DecryptJSON(blob, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (m *Manager) writeJSON(ctx context.Context, key string, v any) error {
	blob, err := m.cipher.EncryptJSON(v)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, blob)
}
