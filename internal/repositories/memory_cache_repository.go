package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "order-desk/pkg/errors"
)

type cacheItem struct {
	value     string
	expiresAt time.Time
}

// MemoryCacheRepository - кеш в памяти процесса для режима без Redis.
type MemoryCacheRepository struct {
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{items: make(map[string]cacheItem), now: time.Now}
}

func (r *MemoryCacheRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	if !item.expiresAt.IsZero() && !r.now().Before(item.expiresAt) {
		delete(r.items, key)
		return "", apperrors.ErrNotFound
	}
	return item.value, nil
}

// Set сохраняет значение; expiration <= 0 означает бессрочно.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	item := cacheItem{value: fmt.Sprint(value)}
	if b, ok := value.([]byte); ok {
		item.value = string(b)
	}
	if expiration > 0 {
		item.expiresAt = r.now().Add(expiration)
	}
	r.mu.Lock()
	r.items[key] = item
	r.mu.Unlock()
	return nil
}

func (r *MemoryCacheRepository) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.items, k)
	}
	return nil
}
