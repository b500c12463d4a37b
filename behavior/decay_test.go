package behavior

import (
	"math"
	"testing"
	"time"
)

func TestHyperbolicDecay(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"just now", 0, 1.0},
		{"one day", 24 * time.Hour, 0.5},
		{"two days", 48 * time.Hour, 1.0 / 3.0},
		{"three days", 72 * time.Hour, 0.25},
		{"partial hour truncated", 24*time.Hour + 59*time.Minute, 0.5},
		{"future", -time.Hour, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HyperbolicDecay(now.Add(-tt.age), now)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HyperbolicDecay(%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestHyperbolicDecayZeroTime(t *testing.T) {
	if got := HyperbolicDecay(time.Time{}, time.Now()); got != 1.0 {
		t.Errorf("zero time decay = %v, want 1", got)
	}
}

func TestExponentialDecay(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		days int
		want float64
	}{
		{"today", 0, 1.0},
		{"thirty days", 30, math.Exp(-1)},
		{"floor", 365, MinExponentialDecay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExponentialDecay(now.AddDate(0, 0, -tt.days), now)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ExponentialDecay(%d days) = %v, want %v", tt.days, got, tt.want)
			}
		})
	}
	if got := ExponentialDecay(now.Add(time.Hour), now); got != 1.0 {
		t.Errorf("future decay = %v, want 1", got)
	}
}

func TestDecayMonotonic(t *testing.T) {
	now := time.Now()
	prev := 2.0
	for h := 0; h < 24*60; h += 7 {
		d := HyperbolicDecay(now.Add(-time.Duration(h)*time.Hour), now)
		if d > prev {
			t.Fatalf("decay increased at %dh: %v > %v", h, d, prev)
		}
		if d < 0 || d > 1 {
			t.Fatalf("decay out of range at %dh: %v", h, d)
		}
		prev = d
	}
}
