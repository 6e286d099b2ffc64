package repositories

import (
	"context"
	"sync"

	apperrors "order-desk/pkg/errors"
)

// MemoryCredentialRepository - хранилище в памяти процесса, для тестов и локального запуска.
type MemoryCredentialRepository struct {
	mu       sync.RWMutex
	values   map[string]string
	watchers map[chan string]struct{}
}

func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		values:   make(map[string]string),
		watchers: make(map[chan string]struct{}),
	}
}

func (r *MemoryCredentialRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (r *MemoryCredentialRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	r.values[key] = value
	r.mu.Unlock()
	r.notify(key)
	return nil
}

func (r *MemoryCredentialRepository) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	for _, k := range keys {
		delete(r.values, k)
	}
	r.mu.Unlock()
	for _, k := range keys {
		r.notify(k)
	}
	return nil
}

func (r *MemoryCredentialRepository) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)
	r.mu.Lock()
	r.watchers[ch] = struct{}{}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers, ch)
		close(ch)
		r.mu.Unlock()
	}()
	return ch, nil
}

// notify не блокируется: медленный подписчик пропускает уведомление.
func (r *MemoryCredentialRepository) notify(key string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for ch := range r.watchers {
		select {
		case ch <- key:
		default:
		}
	}
}
