package ledger

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBeginEndRoundTrip(t *testing.T) {
	l := NewLedger()
	started := time.Now()

	if l.HasActive("EMP123") {
		t.Fatal("fresh ledger should have no active rides")
	}

	if err := l.Begin("EMP123", 7, started); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.HasActive("EMP123") {
		t.Error("expected rider to be active after Begin")
	}

	record, err := l.End("EMP123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.RideID != 7 {
		t.Errorf("expected ride 7, got %d", record.RideID)
	}
	if !record.StartedAt.Equal(started) {
		t.Errorf("expected start time %v, got %v", started, record.StartedAt)
	}
	if l.HasActive("EMP123") {
		t.Error("expected rider to be idle after End")
	}
}

func TestBegin_RejectsSecondActiveRide(t *testing.T) {
	l := NewLedger()

	if err := l.Begin("EMP123", 1, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := l.Begin("EMP123", 2, time.Now())
	if !errors.Is(err, ErrRiderAlreadyActive) {
		t.Errorf("expected ErrRiderAlreadyActive, got %v", err)
	}

	// The original record must be untouched.
	record, err := l.End("EMP123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.RideID != 1 {
		t.Errorf("expected original ride 1, got %d", record.RideID)
	}
}

func TestEnd_WithoutActiveRide(t *testing.T) {
	l := NewLedger()

	_, err := l.End("EMP123")
	if !errors.Is(err, ErrNoActiveRide) {
		t.Errorf("expected ErrNoActiveRide, got %v", err)
	}
}

func TestBegin_ConcurrentSameRider_ExactlyOneWins(t *testing.T) {
	l := NewLedger()

	const attempts = 20
	var wg sync.WaitGroup
	var successes int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Begin("EMP123", 7, time.Now()); err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly 1 successful Begin, got %d", successes)
	}
}

func TestLedger_IsolatesRiders(t *testing.T) {
	l := NewLedger()

	if err := l.Begin("EMP123", 1, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Begin("EMP456", 2, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := l.End("EMP123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.HasActive("EMP456") {
		t.Error("ending one rider's ride must not affect another rider")
	}
}
