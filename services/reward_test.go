package services

import "testing"

func TestCalculateXP(t *testing.T) {
	tests := []struct {
		name        string
		baseXP      int64
		streakCount int
		want        int64
	}{
		{"no streak", 100, 0, 100},
		{"one day", 100, 1, 110},
		{"two days", 100, 2, 120},
		{"three days", 100, 3, 130},
		{"four days", 100, 4, 140},
		{"cap reached", 100, 5, 150},
		{"beyond cap", 100, 50, 150},
		{"negative streak treated as zero", 100, -3, 100},
		{"rounding half up", 25, 1, 28}, // 25 * 1.1 = 27.5
		{"zero base", 0, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateXP(tt.baseXP, tt.streakCount); got != tt.want {
				t.Errorf("CalculateXP(%d, %d) = %d, want %d", tt.baseXP, tt.streakCount, got, tt.want)
			}
		})
	}
}

func TestCalculateXPIsPure(t *testing.T) {
	first := CalculateXP(123, 3)
	for i := 0; i < 10; i++ {
		if got := CalculateXP(123, 3); got != first {
			t.Fatalf("CalculateXP not deterministic: got %d then %d", first, got)
		}
	}
}

func TestApplyMultiplier(t *testing.T) {
	double := 2.0
	half := 0.5
	odd := 1.5

	tests := []struct {
		name       string
		xp         int64
		multiplier *float64
		want       int64
	}{
		{"nil means identity", 120, nil, 120},
		{"double", 120, &double, 240},
		{"half", 121, &half, 61}, // 60.5 rounds away from zero
		{"odd multiplier rounds", 25, &odd, 38},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyMultiplier(tt.xp, tt.multiplier); got != tt.want {
				t.Errorf("ApplyMultiplier(%d) = %d, want %d", tt.xp, got, tt.want)
			}
		})
	}
}
