package reconcile

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cartsync/internal/domain"
	"github.com/vladislavdragonenkov/cartsync/internal/metrics"
)

// Reconciler повторяет чтение заказа, пока предикат не подтвердит ожидаемое
// состояние или не израсходуется расписание ретраев.
type Reconciler interface {
	// Reconcile читает заказ, кэширует каждый успешно прочитанный снимок и
	// проверяет его предикатом. nil-предикат считается выполненным сразу.
	// Возвращает ErrRetryExhausted, если расписание закончилось раньше, чем
	// предикат подтвердился; ошибку чтения — если падали сами чтения.
	Reconcile(ctx context.Context, orderID string, validator domain.Validator, schedule *domain.RetrySchedule) (domain.Order, error)
}

type reconciler struct {
	orders  domain.OrderReader
	store   domain.SnapshotStore
	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// New создаёт reconciler. Метрики nil-безопасны: nil отключает запись
// (удобно в тестах), общий экземпляр разделяется с транспортом.
func New(orders domain.OrderReader, store domain.SnapshotStore, logger *log.Entry, m *metrics.CartMetrics) Reconciler {
	if logger == nil {
		logger = log.New().WithField("component", "reconcile")
	}
	return &reconciler{
		orders:  orders,
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

func (r *reconciler) Reconcile(ctx context.Context, orderID string, validator domain.Validator, schedule *domain.RetrySchedule) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.RecordReconcileDuration(time.Since(start))
		}
	}()

	if schedule == nil {
		empty := domain.NoRetry()
		schedule = &empty
	}

	attempt := 0
	for {
		attempt++
		if r.metrics != nil {
			r.metrics.RecordReconcileAttempt()
		}

		order, err := r.orders.GetOrder(ctx, orderID)
		if err != nil {
			if r.metrics != nil {
				r.metrics.RecordReconcileReadFailure()
			}
			wait, ok := schedule.Next()
			if !ok {
				// Ретраи исчерпаны на падающем чтении: наружу уходит
				// исходная ошибка чтения, а не ErrRetryExhausted.
				r.logger.WithError(err).WithFields(log.Fields{
					"order_id": orderID,
					"attempts": attempt,
				}).Warn("order read kept failing, giving up")
				return domain.Order{}, err
			}
			r.logger.WithError(err).WithFields(log.Fields{
				"order_id": orderID,
				"attempt":  attempt,
				"wait":     wait,
			}).Debug("order read failed, retrying")
			if err := sleep(ctx, wait); err != nil {
				return domain.Order{}, err
			}
			continue
		}

		// Снимок кэшируется до проверки предиката: даже неудачный reconcile
		// оставляет в кэше последнее наблюдение, а не устаревшие данные.
		if err := r.store.Put(ctx, order); err != nil {
			r.logger.WithError(err).WithField("order_id", orderID).Warn("failed to cache order snapshot")
		}

		if validator == nil || validator.Validate(&order) {
			if r.metrics != nil {
				r.metrics.RecordReconcileSucceeded()
			}
			return order, nil
		}

		wait, ok := schedule.Next()
		if !ok {
			if r.metrics != nil {
				r.metrics.RecordReconcileExhausted()
			}
			r.logger.WithFields(log.Fields{
				"order_id": orderID,
				"attempts": attempt,
			}).Warn("order state not confirmed within retry schedule")
			return domain.Order{}, domain.ErrRetryExhausted
		}
		r.logger.WithFields(log.Fields{
			"order_id": orderID,
			"attempt":  attempt,
			"wait":     wait,
		}).Debug("order state not confirmed yet, retrying")
		if err := sleep(ctx, wait); err != nil {
			return domain.Order{}, err
		}
	}
}

// sleep ждёт указанную паузу, прерываясь при отмене контекста.
func sleep(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
