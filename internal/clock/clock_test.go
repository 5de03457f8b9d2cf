package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	instant := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	c := NewFixed(instant)

	first := c.Now()
	if first.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", first.Location())
	}
	if !first.Equal(instant) {
		t.Fatalf("expected %v, got %v", instant, first)
	}
	if !c.Now().Equal(first) {
		t.Fatalf("expected a frozen clock")
	}
}

func TestStepped(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewStepped(start, time.Second)

	for i := 0; i < 3; i++ {
		got := c.Now()
		want := start.Add(time.Duration(i) * time.Second)
		if !got.Equal(want) {
			t.Fatalf("read %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestSystem(t *testing.T) {
	t.Parallel()

	if got := NewSystem().Now(); got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
}
