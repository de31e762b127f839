package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	pb := &dto.Metric{}
	if err := c.Write(pb); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return pb.GetCounter().GetValue()
}

func TestNewCartMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetricsWithRegisterer(reg)

	if metrics == nil {
		t.Fatal("NewCartMetricsWithRegisterer should not return nil")
	}
	if metrics.commandsSent == nil {
		t.Error("commandsSent counter vec should not be nil")
	}
	if metrics.commandsFailed == nil {
		t.Error("commandsFailed counter vec should not be nil")
	}
	if metrics.reconcileAttempts == nil {
		t.Error("reconcileAttempts counter should not be nil")
	}
	if metrics.reconcileSucceeded == nil {
		t.Error("reconcileSucceeded counter should not be nil")
	}
	if metrics.reconcileExhausted == nil {
		t.Error("reconcileExhausted counter should not be nil")
	}
	if metrics.reconcileReadFailures == nil {
		t.Error("reconcileReadFailures counter should not be nil")
	}
	if metrics.commandDuration == nil {
		t.Error("commandDuration histogram vec should not be nil")
	}
	if metrics.reconcileDuration == nil {
		t.Error("reconcileDuration histogram should not be nil")
	}
}

func TestCartMetricsRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewCartMetricsWithRegisterer(reg)
	second := NewCartMetricsWithRegisterer(reg)

	first.RecordCommandSent("CreateOrder")
	second.RecordCommandSent("CreateOrder")

	got := counterValue(t, second.commandsSent.WithLabelValues("CreateOrder"))
	if got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}

func TestCartMetricsRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetricsWithRegisterer(reg)

	metrics.RecordCommandSent("ReserveOrder")
	metrics.RecordCommandFailed("ReserveOrder")
	metrics.RecordCommandDuration("ReserveOrder", 120*time.Millisecond)
	metrics.RecordReconcileAttempt()
	metrics.RecordReconcileAttempt()
	metrics.RecordReconcileSucceeded()
	metrics.RecordReconcileExhausted()
	metrics.RecordReconcileReadFailure()
	metrics.RecordReconcileDuration(time.Second)

	if got := counterValue(t, metrics.commandsSent.WithLabelValues("ReserveOrder")); got != 1 {
		t.Errorf("commandsSent: expected 1, got %v", got)
	}
	if got := counterValue(t, metrics.commandsFailed.WithLabelValues("ReserveOrder")); got != 1 {
		t.Errorf("commandsFailed: expected 1, got %v", got)
	}
	if got := counterValue(t, metrics.reconcileAttempts); got != 2 {
		t.Errorf("reconcileAttempts: expected 2, got %v", got)
	}
	if got := counterValue(t, metrics.reconcileSucceeded); got != 1 {
		t.Errorf("reconcileSucceeded: expected 1, got %v", got)
	}
	if got := counterValue(t, metrics.reconcileExhausted); got != 1 {
		t.Errorf("reconcileExhausted: expected 1, got %v", got)
	}
	if got := counterValue(t, metrics.reconcileReadFailures); got != 1 {
		t.Errorf("reconcileReadFailures: expected 1, got %v", got)
	}
}
