package services

import (
	"errors"
	"fmt"
	"log"

	"quiz-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressSnapshot is an explicit, immutable view of a player's progression,
// passed into the pure evaluator instead of ambient shared state.
type ProgressSnapshot struct {
	XPTotal           int64
	StreakCount       int
	UnlockedBadges    map[string]bool // badge code -> unlocked
	CompletedMissions int64
	RegionUnits       map[string]RegionUnits // region -> totals
}

// RegionUnits counts units within one region.
type RegionUnits struct {
	Total     int64
	Completed int64
}

// EvaluateBadges returns the definitions whose condition holds against the
// snapshot and whose code is not already unlocked. Pure and idempotent: an
// already-unlocked badge is never re-reported even while its condition
// still holds. It grants nothing; callers mint claimables from the result.
func EvaluateBadges(snap ProgressSnapshot, defs []models.BadgeDefinition) []models.BadgeDefinition {
	var newlyMet []models.BadgeDefinition
	for _, def := range defs {
		if snap.UnlockedBadges[def.Code] {
			continue
		}
		if conditionHolds(snap, def.Condition) {
			newlyMet = append(newlyMet, def)
		}
	}
	return newlyMet
}

func conditionHolds(snap ProgressSnapshot, cond models.BadgeCondition) bool {
	switch cond.Type {
	case models.ConditionFirstMission:
		return snap.CompletedMissions >= 1
	case models.ConditionStreakMilestone:
		return int64(snap.StreakCount) >= cond.Value
	case models.ConditionXPMilestone:
		return snap.XPTotal >= cond.Value
	case models.ConditionRegionMaster:
		units, ok := snap.RegionUnits[cond.Region]
		return ok && units.Total > 0 && units.Completed == units.Total
	default:
		return false
	}
}

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// Snapshot assembles a ProgressSnapshot for a profile from the profile row
// plus the mission/unit progress mirrors.
func (s *BadgeService) Snapshot(profileID string) (ProgressSnapshot, error) {
	snap := ProgressSnapshot{
		UnlockedBadges: map[string]bool{},
		RegionUnits:    map[string]RegionUnits{},
	}

	var profile models.PlayerProfile
	if err := s.DB.Preload("UnlockedBadges").First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snap, fmt.Errorf("%w: profile %s", models.ErrNotFound, profileID)
		}
		return snap, err
	}
	snap.XPTotal = profile.XPTotal
	snap.StreakCount = profile.StreakCount
	for _, pb := range profile.UnlockedBadges {
		snap.UnlockedBadges[pb.BadgeCode] = true
	}

	if err := s.DB.Model(&models.MissionProgress{}).
		Where("profile_id = ? AND completed = ?", profileID, true).
		Count(&snap.CompletedMissions).Error; err != nil {
		return snap, err
	}

	type regionRow struct {
		Region    string
		Total     int64
		Completed int64
	}
	var rows []regionRow
	if err := s.DB.Model(&models.UnitProgress{}).
		Select("region, COUNT(*) AS total, SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed").
		Where("profile_id = ?", profileID).
		Group("region").
		Scan(&rows).Error; err != nil {
		return snap, err
	}
	for _, r := range rows {
		snap.RegionUnits[r.Region] = RegionUnits{Total: r.Total, Completed: r.Completed}
	}

	return snap, nil
}

// EvaluateForProfile evaluates the catalog against the profile's current
// snapshot and mints one badge claimable per newly satisfied badge. The
// unique (profile, kind, source_ref) index makes re-evaluation a no-op for
// badges that already have a claimable, so repeated calls never duplicate.
// The XP payout itself only happens when the claimable is claimed.
func (s *BadgeService) EvaluateForProfile(profileID string) ([]models.BadgeDefinition, error) {
	snap, err := s.Snapshot(profileID)
	if err != nil {
		return nil, err
	}

	var defs []models.BadgeDefinition
	if err := s.DB.Find(&defs).Error; err != nil {
		return nil, err
	}

	newlyMet := EvaluateBadges(snap, defs)
	for _, def := range newlyMet {
		claimable := models.Claimable{
			ID:          uuid.NewString(),
			ProfileID:   profileID,
			Kind:        models.ClaimableKindBadge,
			SourceRef:   def.Code,
			Reward:      models.Reward{Kind: models.RewardKindXP, Amount: def.XPReward},
			IsCompleted: true,
		}
		if err := s.DB.Create(&claimable).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // claimable already minted by an earlier evaluation
			}
			log.Printf("DB Error minting badge claimable %s for %s: %v", def.Code, profileID, err)
			return nil, err
		}
	}
	return newlyMet, nil
}

// SeedBadgeCatalog inserts missing built-in catalog entries. Idempotent
// across restarts.
func (s *BadgeService) SeedBadgeCatalog() error {
	for _, def := range models.BadgeCatalog {
		var existing models.BadgeDefinition
		err := s.DB.First(&existing, "code = ?", def.Code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.DB.Create(&def).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
