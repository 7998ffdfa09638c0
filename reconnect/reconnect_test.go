package reconnect

import (
	"testing"
	"time"
)

func TestNextDelayBounds(t *testing.T) {
	r := New(Config{BaseDelay: 10 * time.Millisecond, Multiplier: 2, MaxDelay: 200 * time.Millisecond, MaxJitter: 0.1})

	for n := 1; n <= 6; n++ {
		d, ok := r.NextDelay()
		if !ok {
			t.Fatalf("attempt %d: expected a delay", n)
		}
		base := 10 * time.Millisecond
		want := time.Duration(float64(base) * pow2(n-1))
		if want > 200*time.Millisecond {
			want = 200 * time.Millisecond
		}
		lo := want
		hi := time.Duration(float64(want) * 1.1)
		if d < lo || d > hi {
			t.Errorf("attempt %d: delay %v out of bounds [%v, %v]", n, d, lo, hi)
		}
	}
}

func pow2(n int) float64 {
	f := 1.0
	for i := 0; i < n; i++ {
		f *= 2
	}
	return f
}

func TestMaxAttemptsExhausted(t *testing.T) {
	r := New(Config{BaseDelay: time.Millisecond, MaxAttempts: 3})
	for i := 0; i < 3; i++ {
		if _, ok := r.NextDelay(); !ok {
			t.Fatalf("attempt %d: expected ok", i)
		}
	}
	if _, ok := r.NextDelay(); ok {
		t.Errorf("expected exhaustion after MaxAttempts")
	}
}

func TestResetClearsState(t *testing.T) {
	r := New(Config{BaseDelay: time.Millisecond, MaxAttempts: 2})
	r.NextDelay()
	r.NextDelay()
	if _, ok := r.NextDelay(); ok {
		t.Fatalf("expected exhaustion")
	}
	r.Reset()
	if r.Attempt() != 0 {
		t.Errorf("attempt after reset = %d, want 0", r.Attempt())
	}
	if r.Active() {
		t.Errorf("active after reset = true, want false")
	}
	if _, ok := r.NextDelay(); !ok {
		t.Errorf("expected a delay after reset")
	}
}

func TestActiveFlag(t *testing.T) {
	r := New(DefaultConfig())
	if r.Active() {
		t.Fatalf("should not be active before first NextDelay")
	}
	r.NextDelay()
	if !r.Active() {
		t.Errorf("should be active after NextDelay")
	}
}

func TestDefaultsAppliedForZeroFields(t *testing.T) {
	r := New(Config{})
	d, ok := r.NextDelay()
	if !ok {
		t.Fatalf("expected a delay")
	}
	if d < time.Second || d > time.Duration(float64(time.Second)*1.1) {
		t.Errorf("first delay %v not within default base bounds", d)
	}
}
