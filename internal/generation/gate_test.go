package generation

import (
	"context"
	"errors"
	"testing"

	"inova/internal/domain"
)

func TestMemoryGateSupersedesPreviousCall(t *testing.T) {
	g := NewMemoryGate()
	first, releaseFirst, err := g.Acquire(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	second, releaseSecond, err := g.Acquire(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	if !errors.Is(context.Cause(first), domain.ErrSuperseded) {
		t.Fatalf("first cause = %v, want ErrSuperseded", context.Cause(first))
	}
	if second.Err() != nil {
		t.Fatalf("second context should still be live: %v", second.Err())
	}

	// releasing the stale call must not drop the newer one
	releaseFirst()
	if g.InFlight() != 1 {
		t.Fatalf("in-flight = %d, want 1", g.InFlight())
	}
	releaseSecond()
	if g.InFlight() != 0 {
		t.Fatalf("in-flight = %d, want 0", g.InFlight())
	}
}

func TestMemoryGateIsolatesSessions(t *testing.T) {
	g := NewMemoryGate()
	a, releaseA, _ := g.Acquire(context.Background(), "a")
	defer releaseA()
	b, releaseB, _ := g.Acquire(context.Background(), "b")
	defer releaseB()
	if a.Err() != nil || b.Err() != nil {
		t.Fatalf("distinct sessions must not cancel each other")
	}
}

func TestMemoryGateWithoutSession(t *testing.T) {
	g := NewMemoryGate()
	ctx := context.Background()
	got, release, err := g.Acquire(ctx, "")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	defer release()
	if got != ctx {
		t.Fatalf("expected the caller's context back")
	}
	if g.InFlight() != 0 {
		t.Fatalf("in-flight = %d, want 0", g.InFlight())
	}
}
