package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics содержит метрики отправки команд и циклов reconcile.
type CartMetrics struct {
	// Счётчики команд по имени команды
	commandsSent   *prometheus.CounterVec
	commandsFailed *prometheus.CounterVec

	// Счётчики reconcile
	reconcileAttempts     prometheus.Counter
	reconcileSucceeded    prometheus.Counter
	reconcileExhausted    prometheus.Counter
	reconcileReadFailures prometheus.Counter

	// Гистограммы времени выполнения
	commandDuration   *prometheus.HistogramVec
	reconcileDuration prometheus.Histogram
}

// NewCartMetrics создаёт метрики в глобальном регистре prometheus.
func NewCartMetrics() *CartMetrics {
	return NewCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartMetricsWithRegisterer создаёт метрики в переданном регистре.
// Уже зарегистрированные коллекторы переиспользуются.
func NewCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		commandsSent: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cartsync_commands_sent_total",
			Help: "Total number of commands sent to the command endpoint",
		}, []string{"command"}),
		commandsFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cartsync_commands_failed_total",
			Help: "Total number of commands that failed after their retry budget",
		}, []string{"command"}),
		reconcileAttempts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsync_reconcile_attempts_total",
			Help: "Total number of order reads issued by the reconcile loop",
		}),
		reconcileSucceeded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsync_reconcile_succeeded_total",
			Help: "Total number of reconcile calls confirmed by their predicate",
		}),
		reconcileExhausted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsync_reconcile_exhausted_total",
			Help: "Total number of reconcile calls that ran out of retries",
		}),
		reconcileReadFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsync_reconcile_read_failures_total",
			Help: "Total number of failed order reads inside the reconcile loop",
		}),
		commandDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "cartsync_command_duration_seconds",
			Help:    "Duration of command round trips including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		reconcileDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "cartsync_reconcile_duration_seconds",
			Help:    "Duration of reconcile calls including backoff sleeps",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCommandSent увеличивает счётчик отправленных команд.
func (m *CartMetrics) RecordCommandSent(command string) {
	m.commandsSent.WithLabelValues(command).Inc()
}

// RecordCommandFailed увеличивает счётчик неудачных команд.
func (m *CartMetrics) RecordCommandFailed(command string) {
	m.commandsFailed.WithLabelValues(command).Inc()
}

// RecordCommandDuration записывает время полного цикла команды.
func (m *CartMetrics) RecordCommandDuration(command string, duration time.Duration) {
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordReconcileAttempt увеличивает счётчик чтений в цикле reconcile.
func (m *CartMetrics) RecordReconcileAttempt() {
	m.reconcileAttempts.Inc()
}

// RecordReconcileSucceeded увеличивает счётчик подтверждённых reconcile.
func (m *CartMetrics) RecordReconcileSucceeded() {
	m.reconcileSucceeded.Inc()
}

// RecordReconcileExhausted увеличивает счётчик исчерпанных расписаний.
func (m *CartMetrics) RecordReconcileExhausted() {
	m.reconcileExhausted.Inc()
}

// RecordReconcileReadFailure увеличивает счётчик неудачных чтений.
func (m *CartMetrics) RecordReconcileReadFailure() {
	m.reconcileReadFailures.Inc()
}

// RecordReconcileDuration записывает длительность reconcile-вызова.
func (m *CartMetrics) RecordReconcileDuration(duration time.Duration) {
	m.reconcileDuration.Observe(duration.Seconds())
}
