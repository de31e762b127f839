package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// sessionStorePostgres хранит пары ключ/значение сессии в таблице cart_session.
type sessionStorePostgres struct {
	db        *sql.DB
	namespace string
}

// NewSessionStore возвращает хранилище сессии поверх PostgreSQL.
func NewSessionStore(store *Store, namespace string) domain.SessionStore {
	return &sessionStorePostgres{
		db:        store.DB(),
		namespace: namespace,
	}
}

// Get возвращает значение или ErrKeyNotFound, если ключа нет.
func (s *sessionStorePostgres) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM cart_session WHERE namespace = $1 AND key = $2
	`, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select session key: %w", err)
	}
	return value, nil
}

// Set записывает значение по ключу (upsert).
func (s *sessionStorePostgres) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_session (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, s.namespace, key, value)
	if err != nil {
		return fmt.Errorf("upsert session key: %w", err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствие ключа не считается ошибкой.
func (s *sessionStorePostgres) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_session WHERE namespace = $1 AND key = $2
	`, s.namespace, key)
	if err != nil {
		return fmt.Errorf("delete session key: %w", err)
	}
	return nil
}

// Has сообщает, существует ли ключ.
func (s *sessionStorePostgres) Has(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM cart_session WHERE namespace = $1 AND key = $2)
	`, s.namespace, key).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check session key: %w", err)
	}
	return ok, nil
}

var _ domain.SessionStore = (*sessionStorePostgres)(nil)
