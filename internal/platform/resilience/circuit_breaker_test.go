package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, time.Minute, 1)

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker must allow: %v", err)
	}
	b.RecordFailure()
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if b.State() != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", b.State())
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Second, 1)
	clock := time.Date(2024, 9, 5, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}

	clock = clock.Add(11 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe must be allowed: %v", err)
	}
	b.RecordSuccess()

	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, 10*time.Second, 1)
	clock := time.Date(2024, 9, 5, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	clock = clock.Add(11 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe must be allowed: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened breaker, got %v", err)
	}
}

func TestCircuitBreaker_StatsCountFailuresAndRejections(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, time.Minute, 1)

	b.RecordFailure()
	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}

	stats := b.Stats()
	if stats.State != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", stats.State)
	}
	if stats.TotalFailures != 2 {
		t.Fatalf("expected 2 total failures, got %d", stats.TotalFailures)
	}
	if stats.ConsecutiveFailures != 2 {
		t.Fatalf("expected 2 consecutive failures, got %d", stats.ConsecutiveFailures)
	}
	if stats.Rejections != 2 {
		t.Fatalf("expected 2 rejections, got %d", stats.Rejections)
	}
	if stats.OpenedAt.IsZero() {
		t.Fatalf("expected opened_at to be set")
	}
}

func TestSingleFlight_SharesResult(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	calls := 0

	val, err, _ := flight.Do("key", func() (any, error) {
		calls++
		return "value", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "value" || calls != 1 {
		t.Fatalf("unexpected result val=%v calls=%d", val, calls)
	}
}
