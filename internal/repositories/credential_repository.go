package repositories

import (
	"context"
)

// CredentialRepositoryInterface - внешнее KV-хранилище зашифрованных блобов сессии.
// Get возвращает apperrors.ErrNotFound, если ключа нет.
// Watch отдаёт имена изменённых ключей, пока ctx не отменён.
type CredentialRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	Watch(ctx context.Context) (<-chan string, error)
}
