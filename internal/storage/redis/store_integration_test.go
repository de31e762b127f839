package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
)

const defaultLocalIntegrationAddr = "localhost:6379"

func openRedisStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	candidates := []string{
		strings.TrimSpace(os.Getenv("CARTSYNC_REDIS_TEST_ADDR")),
		strings.TrimSpace(os.Getenv("CARTSYNC_REDIS_ADDR")),
		defaultLocalIntegrationAddr,
	}

	seen := map[string]struct{}{}
	var openErrs []string
	for _, addr := range candidates {
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		store, err := Open(ctx, addr, os.Getenv("CARTSYNC_REDIS_PASSWORD"))
		cancel()
		if err == nil {
			t.Cleanup(func() {
				_ = store.Close()
			})
			return store
		}
		openErrs = append(openErrs, fmt.Sprintf("%s: %v", addr, err))
	}

	t.Skipf("redis is not available for integration tests: %s", strings.Join(openErrs, " | "))
	return nil
}

func TestRedisSnapshotStoreRoundTrip(t *testing.T) {
	store := openRedisStoreForIntegrationTest(t)
	snapshots := NewSnapshotStore(store, uuid.NewString())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := snapshots.Get(ctx); err != domain.ErrNoOrder {
		t.Fatalf("expected ErrNoOrder on empty slot, got %v", err)
	}
	if ok, err := snapshots.Has(ctx); err != nil || ok {
		t.Fatalf("expected empty slot, got ok=%v err=%v", ok, err)
	}

	order := domain.Order{
		ID:     uuid.NewString(),
		Status: domain.OrderStatusReserved,
		LineItems: []domain.LineItem{
			{ID: uuid.NewString(), Status: domain.LineItemStatusReserved, Type: domain.LineItemTypeAccess},
		},
	}
	if err := snapshots.Put(ctx, order); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}

	got, err := snapshots.Get(ctx)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if got.ID != order.ID || got.Status != order.Status || len(got.LineItems) != 1 {
		t.Fatalf("snapshot mismatch: %+v", got)
	}

	if err := snapshots.Clear(ctx); err != nil {
		t.Fatalf("clear snapshot: %v", err)
	}
	if ok, err := snapshots.Has(ctx); err != nil || ok {
		t.Fatalf("expected cleared slot, got ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store := openRedisStoreForIntegrationTest(t)
	session := NewSessionStore(store, uuid.NewString())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := session.Get(ctx, "sales-channel-id"); err != domain.ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := session.Set(ctx, "sales-channel-id", "sc-1"); err != nil {
		t.Fatalf("set session key: %v", err)
	}
	val, err := session.Get(ctx, "sales-channel-id")
	if err != nil || val != "sc-1" {
		t.Fatalf("get session key: val=%q err=%v", val, err)
	}
	if ok, err := session.Has(ctx, "sales-channel-id"); err != nil || !ok {
		t.Fatalf("expected key to exist, got ok=%v err=%v", ok, err)
	}

	if err := session.Delete(ctx, "sales-channel-id"); err != nil {
		t.Fatalf("delete session key: %v", err)
	}
	if err := session.Delete(ctx, "sales-channel-id"); err != nil {
		t.Fatalf("delete of missing key must not fail: %v", err)
	}
	if _, err := session.Get(ctx, "sales-channel-id"); err != domain.ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}
