package hours

import (
	"math"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestEffectiveQuota(t *testing.T) {
	tests := []struct {
		name         string
		defaultHours int
		override     *int
		want         int
	}{
		{"no override uses default", 140, nil, 140},
		{"override wins", 140, intPtr(80), 80},
		{"override larger than default", 100, intPtr(160), 160},
		{"override equal to default still an override", 140, intPtr(140), 140},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveQuota(tt.defaultHours, tt.override); got != tt.want {
				t.Errorf("EffectiveQuota(%d, %v) = %d, want %d", tt.defaultHours, tt.override, got, tt.want)
			}
		})
	}
}

func TestSummarize_Remaining(t *testing.T) {
	for _, total := range []float64{0, 0.5, 70, 139.9, 140, 141, 500} {
		s := Summarize(total, 140)
		want := math.Max(140-total, 0)
		if s.RemainingHours != want {
			t.Errorf("Summarize(%v, 140).RemainingHours = %v, want %v", total, s.RemainingHours, want)
		}
		if s.RemainingHours < 0 {
			t.Errorf("remaining hours must never be negative, got %v", s.RemainingHours)
		}
	}
}

func TestSummarize_PercentageMonotonicAndCapped(t *testing.T) {
	prev := -1.0
	for total := 0.0; total <= 300; total += 7.5 {
		s := Summarize(total, 140)
		if s.Percentage < prev {
			t.Fatalf("percentage decreased from %v to %v at total=%v", prev, s.Percentage, total)
		}
		if s.Percentage > 100 {
			t.Fatalf("percentage above cap: %v at total=%v", s.Percentage, total)
		}
		prev = s.Percentage
	}
}

func TestSummarize_CompletionBoundary(t *testing.T) {
	exact := Summarize(140, 140)
	if !exact.IsComplete {
		t.Error("total == quota must be complete")
	}
	if exact.Percentage != 100 {
		t.Errorf("total == quota must read 100%%, got %v", exact.Percentage)
	}

	under := Summarize(139.99, 140)
	if under.IsComplete {
		t.Error("total just under quota must not be complete")
	}
	if under.Percentage >= 100 {
		t.Errorf("total under quota must read below 100%%, got %v", under.Percentage)
	}

	over := Summarize(200, 140)
	if !over.IsComplete || over.Percentage != 100 {
		t.Errorf("total over quota: got complete=%v pct=%v", over.IsComplete, over.Percentage)
	}
}

func TestSummarize_ZeroQuotaGuard(t *testing.T) {
	s := Summarize(50, 0)
	if s.Percentage != 0 {
		t.Errorf("zero quota must report 0%%, got %v", s.Percentage)
	}
	if s.IsComplete {
		t.Error("zero quota must not report completion")
	}
}

func TestSum(t *testing.T) {
	got := Sum([]float64{7.5, 3, 0.25})
	if got != 10.75 {
		t.Errorf("Sum = %v, want 10.75", got)
	}
	if Sum(nil) != 0 {
		t.Error("Sum(nil) should be 0")
	}
}

func TestSummarizeByUser_IndependentQuotas(t *testing.T) {
	totals := map[string]float64{"a": 70, "b": 70}
	quotas := map[string]int{"a": 140, "b": 70}

	out := SummarizeByUser(totals, quotas)

	if out["a"].Percentage != 50 {
		t.Errorf("user a percentage = %v, want 50", out["a"].Percentage)
	}
	if !out["b"].IsComplete {
		t.Error("user b logged their full quota and should be complete")
	}
	if out["a"].IsComplete {
		t.Error("user a must not inherit user b's completion")
	}
}
