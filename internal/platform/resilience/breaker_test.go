package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker_Transitions(t *testing.T) {
	b := NewBreaker(BreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenMaxReq: 1})

	now := time.Date(2025, 9, 13, 11, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestBreaker_ExecuteIgnoresNonCountingErrors(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Enabled: true, FailureThreshold: 1})
	notFound := errors.New("status 404")

	err := b.Execute(func() error { return notFound }, func(err error) bool { return !errors.Is(err, notFound) })
	if !errors.Is(err, notFound) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed breaker, got %s", state)
	}

	_ = b.Execute(func() error { return errors.New("timeout") }, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open breaker, got %s", state)
	}
}

func TestBreaker_DisabledAlwaysRuns(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Enabled: false, FailureThreshold: 1})
	calls := 0
	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { calls++; return errors.New("boom") }, nil)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}
