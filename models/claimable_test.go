package models

import (
	"errors"
	"testing"
)

func TestRewardValidate(t *testing.T) {
	tests := []struct {
		name    string
		reward  Reward
		wantErr bool
	}{
		{"xp ok", Reward{Kind: RewardKindXP, Amount: 100}, false},
		{"xp zero amount", Reward{Kind: RewardKindXP, Amount: 0}, true},
		{"xp with item id", Reward{Kind: RewardKindXP, Amount: 10, ItemID: "x"}, true},
		{"credits ok", Reward{Kind: RewardKindCredits, Amount: 5}, false},
		{"credits negative", Reward{Kind: RewardKindCredits, Amount: -5}, true},
		{"hearts ok", Reward{Kind: RewardKindHearts, Amount: 5}, false},
		{"hearts above cap", Reward{Kind: RewardKindHearts, Amount: 6}, true},
		{"freeze ok", Reward{Kind: RewardKindStreakFreeze, Amount: 1}, false},
		{"item ok", Reward{Kind: RewardKindItem, ItemID: "golden-owl"}, false},
		{"item missing id", Reward{Kind: RewardKindItem}, true},
		{"item with amount", Reward{Kind: RewardKindItem, ItemID: "x", Amount: 3}, true},
		{"unknown kind", Reward{Kind: "gems", Amount: 3}, true},
		{"empty kind", Reward{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reward.Validate()
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBadgeCatalogCodesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range BadgeCatalog {
		if def.Code == "" {
			t.Errorf("badge %q has empty code", def.Name)
		}
		if seen[def.Code] {
			t.Errorf("duplicate badge code %q", def.Code)
		}
		seen[def.Code] = true
		if def.XPReward <= 0 {
			t.Errorf("badge %q has no xp reward", def.Code)
		}
	}
}
