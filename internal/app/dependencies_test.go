package app

import (
	"context"
	"testing"
)

func TestBuild_MemoryStorage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SalesChannelID = "sc-1"
	cfg.RegisterID = "reg-1"

	deps, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			t.Errorf("close dependencies: %v", err)
		}
	}()

	if deps.Cart == nil {
		t.Fatal("built graph must expose the cart")
	}
	if deps.Auth == nil {
		t.Fatal("built graph must expose the authenticator")
	}

	sc, err := deps.Cart.SalesChannelID(context.Background())
	if err != nil {
		t.Fatalf("sales channel: %v", err)
	}
	if sc != "sc-1" {
		t.Errorf("expected seeded sales channel sc-1, got %s", sc)
	}
}

func TestBuild_UnknownStorageDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriver("cassandra")

	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatal("unknown storage driver must fail the build")
	}
}
