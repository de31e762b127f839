package domain

import (
	"testing"
	"time"
)

func TestRetryScheduleNextConsumesHead(t *testing.T) {
	schedule := RetrySchedule{0, 500 * time.Millisecond, time.Second}

	wait, ok := schedule.Next()
	if !ok || wait != 0 {
		t.Fatalf("first pop: wait=%v ok=%v", wait, ok)
	}
	wait, ok = schedule.Next()
	if !ok || wait != 500*time.Millisecond {
		t.Fatalf("second pop: wait=%v ok=%v", wait, ok)
	}
	if schedule.Remaining() != 1 {
		t.Fatalf("expected 1 remaining, got %d", schedule.Remaining())
	}

	wait, ok = schedule.Next()
	if !ok || wait != time.Second {
		t.Fatalf("third pop: wait=%v ok=%v", wait, ok)
	}
	if _, ok := schedule.Next(); ok {
		t.Fatal("exhausted schedule must report ok=false")
	}
}

func TestRetryScheduleNilReceiver(t *testing.T) {
	var schedule *RetrySchedule
	if _, ok := schedule.Next(); ok {
		t.Fatal("nil schedule must behave as exhausted")
	}
}

func TestNamedSchedules(t *testing.T) {
	if got := DefaultRetrySchedule().Remaining(); got != 16 {
		t.Errorf("default schedule: expected 16 slots, got %d", got)
	}
	if got := CommandRetrySchedule().Remaining(); got != 6 {
		t.Errorf("command schedule: expected 6 slots, got %d", got)
	}
	if got := TokenRetrySchedule().Remaining(); got != 4 {
		t.Errorf("token schedule: expected 4 slots, got %d", got)
	}
	if got := PaymentRetrySchedule().Remaining(); got != 3 {
		t.Errorf("payment schedule: expected 3 slots, got %d", got)
	}
	if got := NoRetry().Remaining(); got != 0 {
		t.Errorf("no-retry schedule: expected 0 slots, got %d", got)
	}

	// Первая пауза всех расписаний нулевая: первый повтор без ожидания.
	for name, schedule := range map[string]RetrySchedule{
		"default": DefaultRetrySchedule(),
		"command": CommandRetrySchedule(),
		"token":   TokenRetrySchedule(),
		"payment": PaymentRetrySchedule(),
	} {
		if wait, ok := schedule.Next(); !ok || wait != 0 {
			t.Errorf("%s schedule: first wait must be 0, got %v", name, wait)
		}
	}
}
