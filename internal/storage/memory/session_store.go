package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// sessionStoreInMemory — простое in-memory key-value хранилище контекста сессии.
type sessionStoreInMemory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSessionStore возвращает in-memory хранилище сессии.
func NewSessionStore() domain.SessionStore {
	return &sessionStoreInMemory{
		values: make(map[string]string),
	}
}

// Get возвращает значение по ключу или ErrKeyNotFound.
func (s *sessionStoreInMemory) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

// Set сохраняет значение по ключу.
func (s *sessionStoreInMemory) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Delete удаляет значение по ключу; отсутствие ключа не считается ошибкой.
func (s *sessionStoreInMemory) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Has сообщает, есть ли значение по ключу.
func (s *sessionStoreInMemory) Has(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.values[key]
	return ok, nil
}

var _ domain.SessionStore = (*sessionStoreInMemory)(nil)
