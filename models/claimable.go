package models

import (
	"fmt"
	"time"
)

// RewardKind tags the reward union carried by a Claimable.
type RewardKind string

const (
	RewardKindXP           RewardKind = "xp"
	RewardKindCredits      RewardKind = "credits"
	RewardKindItem         RewardKind = "item"
	RewardKindHearts       RewardKind = "hearts"
	RewardKindStreakFreeze RewardKind = "streak_freeze"
)

// Reward is an explicit tagged union: exactly one shape is valid per kind.
// Amount-bearing kinds require Amount > 0; item rewards require ItemID.
type Reward struct {
	Kind   RewardKind `json:"kind"`
	Amount int64      `json:"amount,omitempty"`
	ItemID string     `json:"item_id,omitempty"`
}

// Validate enforces the per-tag shape.
func (r Reward) Validate() error {
	switch r.Kind {
	case RewardKindXP, RewardKindCredits, RewardKindStreakFreeze:
		if r.Amount <= 0 {
			return fmt.Errorf("%w: %s reward requires a positive amount", ErrValidation, r.Kind)
		}
		if r.ItemID != "" {
			return fmt.Errorf("%w: %s reward must not carry an item id", ErrValidation, r.Kind)
		}
	case RewardKindHearts:
		if r.Amount <= 0 || r.Amount > MaxHearts {
			return fmt.Errorf("%w: hearts reward amount must be 1..%d", ErrValidation, MaxHearts)
		}
	case RewardKindItem:
		if r.ItemID == "" {
			return fmt.Errorf("%w: item reward requires an item id", ErrValidation)
		}
		if r.Amount != 0 {
			return fmt.Errorf("%w: item reward must not carry an amount", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown reward kind %q", ErrValidation, r.Kind)
	}
	return nil
}

// ClaimableKind distinguishes how the claimable was earned.
type ClaimableKind string

const (
	ClaimableKindMission ClaimableKind = "mission"
	ClaimableKindGift    ClaimableKind = "gift"
	ClaimableKindBadge   ClaimableKind = "badge"
)

// Claimable = a reward-bearing record (mission completion, gift, badge unlock)
// that transitions from earned to claimed exactly once. The unique
// (profile, kind, source_ref) index keeps re-evaluation from minting duplicates.
type Claimable struct {
	ID        string        `gorm:"primaryKey;type:uuid" json:"id"`
	ProfileID string        `gorm:"index;not null;uniqueIndex:uniq_claim_source" json:"profile_id"`
	Kind      ClaimableKind `gorm:"type:varchar(16);not null;uniqueIndex:uniq_claim_source" json:"kind"`

	// Mission id, gift id or badge code the claimable was minted for.
	SourceRef string `gorm:"not null;uniqueIndex:uniq_claim_source" json:"source_ref"`

	Reward Reward `gorm:"serializer:json;type:jsonb" json:"reward"`

	// Missions are claimable only once completed; gifts and badge unlocks
	// are minted already completed.
	IsCompleted bool       `json:"is_completed" gorm:"default:false"`
	IsClaimed   bool       `json:"is_claimed" gorm:"default:false;index"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`

	Timestamps
}

// InventoryItem records an item reward paid out to a profile.
type InventoryItem struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	ProfileID   string `gorm:"index;not null" json:"profile_id"`
	ItemID      string `gorm:"not null" json:"item_id"`
	ClaimableID string `gorm:"index" json:"claimable_id"` // claim that granted it

	Timestamps
}
