package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// snapshotStorePostgres хранит снимок заказа в таблице cart_snapshot
// одной строкой на namespace сессии.
type snapshotStorePostgres struct {
	db        *sql.DB
	namespace string
}

// NewSnapshotStore возвращает хранилище снимка поверх PostgreSQL.
func NewSnapshotStore(store *Store, namespace string) domain.SnapshotStore {
	return &snapshotStorePostgres{
		db:        store.DB(),
		namespace: namespace,
	}
}

// Get возвращает снимок или ErrNoOrder, если строки нет.
func (s *snapshotStorePostgres) Get(ctx context.Context) (domain.Order, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM cart_snapshot WHERE namespace = $1
	`, s.namespace).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNoOrder
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("select order snapshot: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.Order{}, fmt.Errorf("decode order snapshot: %w", err)
	}
	return order, nil
}

// Put замещает снимок целиком (upsert).
func (s *snapshotStorePostgres) Put(ctx context.Context, order domain.Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cart_snapshot (namespace, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (namespace)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, s.namespace, raw)
	if err != nil {
		return fmt.Errorf("upsert order snapshot: %w", err)
	}
	return nil
}

// Clear удаляет снимок. Отсутствие строки не считается ошибкой.
func (s *snapshotStorePostgres) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_snapshot WHERE namespace = $1
	`, s.namespace)
	if err != nil {
		return fmt.Errorf("delete order snapshot: %w", err)
	}
	return nil
}

// Has сообщает, существует ли снимок.
func (s *snapshotStorePostgres) Has(ctx context.Context) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM cart_snapshot WHERE namespace = $1)
	`, s.namespace).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check order snapshot: %w", err)
	}
	return ok, nil
}

var _ domain.SnapshotStore = (*snapshotStorePostgres)(nil)
