package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	apperrors "order-desk/pkg/errors"
)

// RedisCredentialRepository хранит блобы в Redis и оповещает об изменениях через Pub/Sub.
type RedisCredentialRepository struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisCredentialRepository(client *redis.Client, channel string, logger *zap.Logger) CredentialRepositoryInterface {
	return &RedisCredentialRepository{
		client:  client,
		channel: channel,
		logger:  logger.Named("redis_credentials"),
	}
}

func (r *RedisCredentialRepository) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ключа %s из Redis: %w", key, err)
	}
	return val, nil
}

// Set сохраняет значение без срока жизни и публикует имя ключа.
func (r *RedisCredentialRepository) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи ключа %s в Redis: %w", key, err)
	}
	if err := r.client.Publish(ctx, r.channel, key).Err(); err != nil {
		// значение уже записано, подписчики увидят его при следующем чтении
		r.logger.Warn("Не удалось опубликовать изменение ключа", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (r *RedisCredentialRepository) Del(ctx context.Context, keys ...string) error {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("ошибка удаления ключей из Redis: %w", err)
	}
	for _, key := range keys {
		if err := r.client.Publish(ctx, r.channel, key).Err(); err != nil {
			r.logger.Warn("Не удалось опубликовать удаление ключа", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (r *RedisCredentialRepository) Watch(ctx context.Context) (<-chan string, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	// дожидаемся подтверждения подписки, иначе ранние изменения потеряются
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("ошибка подписки на канал %s: %w", r.channel, err)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
