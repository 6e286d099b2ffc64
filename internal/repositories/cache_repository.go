package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface - кеш строковых значений со сроком жизни.
// Get возвращает apperrors.ErrNotFound для отсутствующего или истёкшего ключа.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
}
