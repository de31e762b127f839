package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
	"github.com/vladislavdragonenkov/cartsync/internal/storage/memory"
)

// scriptedReader выдаёт заранее заданную последовательность ответов,
// после чего повторяет последний.
type scriptedReader struct {
	responses []func() (domain.Order, error)
	calls     int
}

func (r *scriptedReader) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	idx := r.calls
	if idx >= len(r.responses) {
		idx = len(r.responses) - 1
	}
	r.calls++
	return r.responses[idx]()
}

func orderWithStatus(status domain.OrderStatus) func() (domain.Order, error) {
	return func() (domain.Order, error) {
		return domain.Order{ID: "order-1", Status: status}, nil
	}
}

func readError(err error) func() (domain.Order, error) {
	return func() (domain.Order, error) {
		return domain.Order{}, err
	}
}

func TestReconcileSucceedsOnLaterAttempt(t *testing.T) {
	reader := &scriptedReader{responses: []func() (domain.Order, error){
		orderWithStatus(domain.OrderStatusPending),
		orderWithStatus(domain.OrderStatusPending),
		orderWithStatus(domain.OrderStatusReserved),
	}}
	store := memory.NewSnapshotStore()
	r := New(reader, store, nil, nil)

	schedule := domain.RetrySchedule{0, 0, 0, 0}
	order, err := r.Reconcile(context.Background(), "order-1", domain.IsReserved(), &schedule)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if order.Status != domain.OrderStatusReserved {
		t.Fatalf("expected reserved order, got %s", order.Status)
	}
	if reader.calls != 3 {
		t.Fatalf("expected 3 reads, got %d", reader.calls)
	}
	// Два промаха предиката сняли ровно два слота расписания.
	if schedule.Remaining() != 2 {
		t.Fatalf("expected 2 remaining retries, got %d", schedule.Remaining())
	}
}

func TestReconcileExhaustsSchedule(t *testing.T) {
	reader := &scriptedReader{responses: []func() (domain.Order, error){
		orderWithStatus(domain.OrderStatusPending),
	}}
	store := memory.NewSnapshotStore()
	r := New(reader, store, nil, nil)

	schedule := domain.RetrySchedule{0}
	_, err := r.Reconcile(context.Background(), "order-1", domain.IsReserved(), &schedule)
	if !errors.Is(err, domain.ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if reader.calls != 2 {
		t.Fatalf("schedule of one retry means two reads, got %d", reader.calls)
	}
}

func TestReconcilePropagatesReadError(t *testing.T) {
	readErr := errors.New("endpoint unavailable")
	reader := &scriptedReader{responses: []func() (domain.Order, error){
		readError(readErr),
	}}
	store := memory.NewSnapshotStore()
	r := New(reader, store, nil, nil)

	schedule := domain.RetrySchedule{0, 0}
	_, err := r.Reconcile(context.Background(), "order-1", domain.IsReserved(), &schedule)
	if !errors.Is(err, readErr) {
		t.Fatalf("expected original read error, got %v", err)
	}
	if errors.Is(err, domain.ErrRetryExhausted) {
		t.Fatal("read failures must not be reported as predicate exhaustion")
	}
	if reader.calls != 3 {
		t.Fatalf("expected 3 reads, got %d", reader.calls)
	}
}

func TestReconcileCachesSnapshotEvenWhenPredicateFails(t *testing.T) {
	reader := &scriptedReader{responses: []func() (domain.Order, error){
		orderWithStatus(domain.OrderStatusPending),
	}}
	store := memory.NewSnapshotStore()
	r := New(reader, store, nil, nil)

	schedule := domain.NoRetry()
	_, err := r.Reconcile(context.Background(), "order-1", domain.IsReserved(), &schedule)
	if !errors.Is(err, domain.ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}

	cached, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("cached snapshot missing: %v", err)
	}
	if cached.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending snapshot in cache, got %s", cached.Status)
	}
}

func TestReconcileNilValidatorAcceptsFirstRead(t *testing.T) {
	reader := &scriptedReader{responses: []func() (domain.Order, error){
		orderWithStatus(domain.OrderStatusPending),
	}}
	store := memory.NewSnapshotStore()
	r := New(reader, store, nil, nil)

	schedule := domain.NoRetry()
	order, err := r.Reconcile(context.Background(), "order-1", nil, &schedule)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if order.ID != "order-1" || reader.calls != 1 {
		t.Fatalf("expected single read, got %d (order %s)", reader.calls, order.ID)
	}
}

func TestReconcileNilScheduleMeansSingleAttempt(t *testing.T) {
	reader := &scriptedReader{responses: []func() (domain.Order, error){
		orderWithStatus(domain.OrderStatusPending),
	}}
	store := memory.NewSnapshotStore()
	r := New(reader, store, nil, nil)

	_, err := r.Reconcile(context.Background(), "order-1", domain.IsReserved(), nil)
	if !errors.Is(err, domain.ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if reader.calls != 1 {
		t.Fatalf("expected single read, got %d", reader.calls)
	}
}

func TestReconcileStopsOnCancelledContext(t *testing.T) {
	reader := &scriptedReader{responses: []func() (domain.Order, error){
		orderWithStatus(domain.OrderStatusPending),
	}}
	store := memory.NewSnapshotStore()
	r := New(reader, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	schedule := domain.DefaultRetrySchedule()
	_, err := r.Reconcile(ctx, "order-1", domain.IsReserved(), &schedule)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
