package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff_NextDelay_NoJitter(t *testing.T) {
	b := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Second),
		WithJitter(0),
	)

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1 * time.Second,
		1 * time.Second,
	}
	for attempt, expected := range want {
		if got := b.NextDelay(attempt); got != expected {
			t.Errorf("NextDelay(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestExponentialBackoff_NextDelay_JitterBounds(t *testing.T) {
	low := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.1), WithRandom(func() float64 { return 0 }))
	high := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.1), WithRandom(func() float64 { return 1 }))

	if got := low.NextDelay(0); got != 900*time.Millisecond {
		t.Errorf("low jitter delay = %v, want 900ms", got)
	}
	if got := high.NextDelay(0); got != 1100*time.Millisecond {
		t.Errorf("high jitter delay = %v, want 1.1s", got)
	}
}

func TestExponentialBackoff_Defaults(t *testing.T) {
	b := NewExponentialBackoff(3)
	if b.MaxAttempts() != 3 {
		t.Errorf("MaxAttempts() = %d, want 3", b.MaxAttempts())
	}
	for attempt := 0; attempt < 10; attempt++ {
		if d := b.NextDelay(attempt); d <= 0 || d > 11*time.Second {
			t.Errorf("NextDelay(%d) = %v out of range", attempt, d)
		}
	}
}
