package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// snapshotStoreRedis хранит снимок заказа одной сессии под namespaced-ключом.
// Значение сериализуется в JSON, как и на транспорте.
type snapshotStoreRedis struct {
	client    *redis.Client
	namespace string
}

// NewSnapshotStore возвращает хранилище снимка поверх Redis.
// namespace разделяет независимые сессии на одном инстансе.
func NewSnapshotStore(store *Store, namespace string) domain.SnapshotStore {
	return &snapshotStoreRedis{
		client:    store.Client(),
		namespace: namespace,
	}
}

func (s *snapshotStoreRedis) key() string {
	return fmt.Sprintf("cartsync:%s:order", s.namespace)
}

// Get возвращает снимок или ErrNoOrder, если ключ отсутствует.
func (s *snapshotStoreRedis) Get(ctx context.Context) (domain.Order, error) {
	raw, err := s.client.Get(ctx, s.key()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Order{}, domain.ErrNoOrder
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("redis get order snapshot: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return domain.Order{}, fmt.Errorf("decode order snapshot: %w", err)
	}
	return order, nil
}

// Put замещает снимок целиком.
func (s *snapshotStoreRedis) Put(ctx context.Context, order domain.Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set order snapshot: %w", err)
	}
	return nil
}

// Clear удаляет снимок. Отсутствие ключа не считается ошибкой.
func (s *snapshotStoreRedis) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("redis del order snapshot: %w", err)
	}
	return nil
}

// Has сообщает, существует ли снимок.
func (s *snapshotStoreRedis) Has(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.key()).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists order snapshot: %w", err)
	}
	return n > 0, nil
}

var _ domain.SnapshotStore = (*snapshotStoreRedis)(nil)
