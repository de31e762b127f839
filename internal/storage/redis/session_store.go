package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// sessionStoreRedis хранит пары ключ/значение сессии в Redis-хэше.
type sessionStoreRedis struct {
	client    *redis.Client
	namespace string
}

// NewSessionStore возвращает хранилище сессии поверх Redis.
func NewSessionStore(store *Store, namespace string) domain.SessionStore {
	return &sessionStoreRedis{
		client:    store.Client(),
		namespace: namespace,
	}
}

func (s *sessionStoreRedis) key() string {
	return fmt.Sprintf("cartsync:%s:session", s.namespace)
}

// Get возвращает значение или ErrKeyNotFound, если ключа нет.
func (s *sessionStoreRedis) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.HGet(ctx, s.key(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis hget session key: %w", err)
	}
	return val, nil
}

// Set записывает значение по ключу.
func (s *sessionStoreRedis) Set(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.key(), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset session key: %w", err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствие ключа не считается ошибкой.
func (s *sessionStoreRedis) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.key(), key).Err(); err != nil {
		return fmt.Errorf("redis hdel session key: %w", err)
	}
	return nil
}

// Has сообщает, существует ли ключ.
func (s *sessionStoreRedis) Has(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.HExists(ctx, s.key(), key).Result()
	if err != nil {
		return false, fmt.Errorf("redis hexists session key: %w", err)
	}
	return ok, nil
}

var _ domain.SessionStore = (*sessionStoreRedis)(nil)
