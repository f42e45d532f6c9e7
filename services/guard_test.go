package services

import (
	"testing"
	"time"
)

func TestMemoryCounterStore(t *testing.T) {
	store := NewMemoryCounterStore()

	if n := store.Hit("a"); n != 1 {
		t.Fatalf("first hit = %d, want 1", n)
	}
	if n := store.Hit("a"); n != 2 {
		t.Fatalf("second hit = %d, want 2", n)
	}
	if n := store.Hit("b"); n != 1 {
		t.Fatalf("other key hit = %d, want 1", n)
	}

	store.Reset("a")
	if n := store.Hit("a"); n != 1 {
		t.Fatalf("hit after reset = %d, want 1", n)
	}
}

func TestMemoryCounterStoreSweep(t *testing.T) {
	store := NewMemoryCounterStore()
	store.Hit("stale")

	if removed := store.Sweep(time.Hour); removed != 0 {
		t.Fatalf("fresh counter swept: %d", removed)
	}
	if removed := store.Sweep(0); removed != 1 {
		t.Fatalf("sweep removed %d, want 1", removed)
	}
	if n := store.Hit("stale"); n != 1 {
		t.Fatalf("hit after sweep = %d, want 1", n)
	}
}
