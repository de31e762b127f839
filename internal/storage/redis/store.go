package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
	defaultPingTimeout  = 5 * time.Second
	defaultPoolSize     = 10
)

// Store оборачивает подключение к Redis для хранилищ сессии.
type Store struct {
	client *redis.Client
}

// Open открывает подключение к Redis и проверяет его доступность.
// addr принимается как URL вида "redis://..." или как пара "host:port".
func Open(ctx context.Context, addr, password string) (*Store, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			Password:     password,
			DialTimeout:  defaultDialTimeout,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			PoolSize:     defaultPoolSize,
		}
	} else if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Client возвращает raw-клиент, когда нужен низкоуровневый доступ.
func (s *Store) Client() *redis.Client {
	return s.client
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	return s.client.Ping(pingCtx).Err()
}

// Close закрывает подключение.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
