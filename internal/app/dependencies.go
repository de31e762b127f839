package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartsync/internal/cart"
	"github.com/vladislavdragonenkov/cartsync/internal/domain"
	"github.com/vladislavdragonenkov/cartsync/internal/metrics"
	"github.com/vladislavdragonenkov/cartsync/internal/reconcile"
	"github.com/vladislavdragonenkov/cartsync/internal/storage/memory"
	"github.com/vladislavdragonenkov/cartsync/internal/storage/postgres"
	"github.com/vladislavdragonenkov/cartsync/internal/storage/redis"
	"github.com/vladislavdragonenkov/cartsync/internal/transport/graphql"
)

// Dependencies — собранный граф зависимостей корзины.
type Dependencies struct {
	Cart *cart.Cart
	Auth *graphql.Authenticator

	// closers закрывает подключения хранилищ в порядке, обратном созданию.
	closers []func() error
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close() error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build собирает корзину по конфигурации: хранилища, транспорт,
// reconcile-цикл и сам фасад.
func Build(ctx context.Context, cfg Config) (*Dependencies, error) {
	logger := log.WithField("component", "app")

	deps := &Dependencies{}

	snapshots, session, err := buildStorage(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	auth := graphql.NewAuthenticator(graphql.AuthOptions{
		AuthURL:      cfg.AuthURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scope:        cfg.Scope,
	})
	deps.Auth = auth

	// Один экземпляр метрик на транспорт и reconcile-цикл.
	cartMetrics := metrics.NewCartMetrics()

	client := graphql.NewClient(graphql.Options{
		AdminAPIURL: cfg.AdminAPIURL,
		GraphAPIURL: cfg.GraphAPIURL,
		HTTPClient:  auth.HTTPClient(),
		Logger:      log.WithField("component", "graphql-client"),
		Metrics:     cartMetrics,
	})

	reconciler := reconcile.New(
		graphql.NewOrderReader(client),
		snapshots,
		log.WithField("component", "reconcile"),
		cartMetrics,
	)

	c, err := cart.New(ctx, cart.Options{
		Commands:   graphql.NewOrderCommandService(client),
		Payments:   graphql.NewPaymentCommandService(client),
		Catalog:    graphql.NewCatalogService(client),
		Store:      snapshots,
		Session:    session,
		Reconciler: reconciler,
		Auth:       auth,
		Logger:     log.WithField("component", "cart"),

		SalesChannelID:        cfg.SalesChannelID,
		RegisterID:            cfg.RegisterID,
		CustomerID:            cfg.CustomerID,
		PreferredLanguageCode: cfg.PreferredLanguageCode,
	})
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Cart = c

	logger.WithFields(log.Fields{
		"storage":       cfg.StorageDriver,
		"sales_channel": cfg.SalesChannelID,
	}).Info("cart dependencies initialized")
	return deps, nil
}

func buildStorage(ctx context.Context, cfg Config, deps *Dependencies) (domain.SnapshotStore, domain.SessionStore, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return memory.NewSnapshotStore(), memory.NewSessionStore(), nil

	case StorageDriverRedis:
		store, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		deps.closers = append(deps.closers, store.Close)
		return redis.NewSnapshotStore(store, cfg.SessionNamespace),
			redis.NewSessionStore(store, cfg.SessionNamespace), nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres storage: %w", err)
		}
		deps.closers = append(deps.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = deps.Close()
			return nil, nil, err
		}
		return postgres.NewSnapshotStore(store, cfg.SessionNamespace),
			postgres.NewSessionStore(store, cfg.SessionNamespace), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
