package services

import (
	"errors"
	"fmt"
	"time"

	"quiz-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// premiumXPMultiplier doubles XP payouts for premium profiles.
var premiumXPMultiplier = 2.0

// ProfileDelta reports what a claim payout changed on the profile.
type ProfileDelta struct {
	XP            int64  `json:"xp,omitempty"`
	Credits       int64  `json:"credits,omitempty"`
	Hearts        int    `json:"hearts,omitempty"`
	StreakFreezes int    `json:"streak_freezes,omitempty"`
	ItemID        string `json:"item_id,omitempty"`
	BadgeCode     string `json:"badge_code,omitempty"`
}

// ClaimResult is returned from a successful claim.
type ClaimResult struct {
	RewardApplied models.Reward `json:"reward_applied"`
	ProfileDelta  ProfileDelta  `json:"profile_delta"`
}

type ClaimService struct {
	DB *gorm.DB
}

func NewClaimService(db *gorm.DB) *ClaimService {
	return &ClaimService{DB: db}
}

// Claim performs the exactly-once payout for a claimable. The false→true
// flip of is_claimed is one conditional update; zero affected rows means a
// concurrent claim already won and no payout happens here. The flip and
// the payout commit or fail as one transaction, so two racing calls yield
// exactly one payout. A store-level write conflict is retried once before
// surfacing.
func (s *ClaimService) Claim(claimableID, profileID string) (*ClaimResult, error) {
	var res *ClaimResult
	claimErr := retryOnConflict(func() error {
		var err error
		res, err = s.claimOnce(claimableID, profileID)
		return err
	})
	if claimErr != nil {
		return nil, claimErr
	}
	return res, nil
}

func (s *ClaimService) claimOnce(claimableID, profileID string) (*ClaimResult, error) {
	var out ClaimResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var claimable models.Claimable
		if err := tx.First(&claimable, "id = ?", claimableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: claimable %s", models.ErrNotFound, claimableID)
			}
			return err
		}

		if claimable.ProfileID != profileID {
			return fmt.Errorf("%w: claimable belongs to another player", models.ErrNotEligible)
		}
		if claimable.Kind == models.ClaimableKindMission && !claimable.IsCompleted {
			return fmt.Errorf("%w: mission not completed yet", models.ErrNotEligible)
		}
		if err := claimable.Reward.Validate(); err != nil {
			return err
		}

		var profile models.PlayerProfile
		if err := tx.First(&profile, "id = ?", profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: profile %s", models.ErrNotFound, profileID)
			}
			return err
		}

		// The exactly-once gate. Whoever flips the flag pays out; everyone
		// else sees zero rows affected.
		now := time.Now()
		result := tx.Model(&models.Claimable{}).
			Where("id = ? AND is_claimed = ?", claimableID, false).
			Updates(map[string]interface{}{"is_claimed": true, "claimed_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrAlreadyClaimed
		}

		delta, err := s.applyPayout(tx, &profile, claimable)
		if err != nil {
			return err
		}

		out = ClaimResult{RewardApplied: claimable.Reward, ProfileDelta: delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// applyPayout mutates the profile for the reward, inside the claim
// transaction. Counters update through SQL increment expressions so
// concurrent payouts of different claimables cannot lose each other's
// increments; hearts clamp under the profile row's write lock.
func (s *ClaimService) applyPayout(tx *gorm.DB, profile *models.PlayerProfile, claimable models.Claimable) (ProfileDelta, error) {
	var delta ProfileDelta
	reward := claimable.Reward
	update := tx.Model(&models.PlayerProfile{}).Where("id = ?", profile.ID)

	switch reward.Kind {
	case models.RewardKindXP:
		amount := CalculateXP(reward.Amount, profile.StreakCount)
		if profile.IsPremium {
			amount = ApplyMultiplier(amount, &premiumXPMultiplier)
		}
		if err := update.Update("xp_total", gorm.Expr("xp_total + ?", amount)).Error; err != nil {
			return delta, err
		}
		delta.XP = amount

	case models.RewardKindCredits:
		if err := update.Update("credits", gorm.Expr("credits + ?", reward.Amount)).Error; err != nil {
			return delta, err
		}
		delta.Credits = reward.Amount

	case models.RewardKindHearts:
		// Touch the row first to take its write lock, then read the hearts
		// value the refill starts from. A refill for another claimable
		// cannot slip between the read and the clamped write, so the
		// reported delta is exactly what was granted.
		touch := tx.Model(&models.PlayerProfile{}).Where("id = ?", profile.ID).
			Update("current_hearts", gorm.Expr("current_hearts"))
		if touch.Error != nil {
			return delta, touch.Error
		}
		var current models.PlayerProfile
		if err := tx.First(&current, "id = ?", profile.ID).Error; err != nil {
			return delta, err
		}
		hearts := current.CurrentHearts + int(reward.Amount)
		if hearts > models.MaxHearts {
			hearts = models.MaxHearts
		}
		if err := update.Update("current_hearts", hearts).Error; err != nil {
			return delta, err
		}
		delta.Hearts = hearts - current.CurrentHearts

	case models.RewardKindStreakFreeze:
		if err := update.Update("streak_freezes", gorm.Expr("streak_freezes + ?", reward.Amount)).Error; err != nil {
			return delta, err
		}
		delta.StreakFreezes = int(reward.Amount)

	case models.RewardKindItem:
		item := models.InventoryItem{
			ID:          uuid.NewString(),
			ProfileID:   profile.ID,
			ItemID:      reward.ItemID,
			ClaimableID: claimable.ID,
		}
		if err := tx.Create(&item).Error; err != nil {
			return delta, err
		}
		delta.ItemID = reward.ItemID
	}

	// A badge claim also records the unlock itself.
	if claimable.Kind == models.ClaimableKindBadge {
		pb := models.ProfileBadge{
			ID:        uuid.NewString(),
			ProfileID: profile.ID,
			BadgeCode: claimable.SourceRef,
		}
		if err := tx.Create(&pb).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return delta, err
		}
		delta.BadgeCode = claimable.SourceRef
	}

	return delta, nil
}
