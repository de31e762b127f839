package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

// snapshotStoreInMemory — однослотовый in-memory кэш снимка заказа.
type snapshotStoreInMemory struct {
	mu    sync.RWMutex
	order *domain.Order
}

// NewSnapshotStore возвращает in-memory хранилище снимка для одной сессии.
func NewSnapshotStore() domain.SnapshotStore {
	return &snapshotStoreInMemory{}
}

// Get возвращает копию снимка или ErrNoOrder, если слот пуст.
func (s *snapshotStoreInMemory) Get(ctx context.Context) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.order == nil {
		return domain.Order{}, domain.ErrNoOrder
	}
	return *s.order, nil
}

// Put замещает снимок. Сохраняется копия, чтобы избежать мутаций извне.
func (s *snapshotStoreInMemory) Put(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := order
	s.order = &stored
	return nil
}

// Clear очищает слот.
func (s *snapshotStoreInMemory) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	return nil
}

// Has сообщает, занят ли слот.
func (s *snapshotStoreInMemory) Has(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.order != nil, nil
}

var _ domain.SnapshotStore = (*snapshotStoreInMemory)(nil)
