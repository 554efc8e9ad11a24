package models

import (
	"github.com/gosimple/slug"
)

// BadgeConditionType selects which progression fact a badge checks.
type BadgeConditionType string

const (
	ConditionFirstMission    BadgeConditionType = "first_mission"    // at least one completed mission
	ConditionStreakMilestone BadgeConditionType = "streak_milestone" // streak_count >= Value
	ConditionXPMilestone     BadgeConditionType = "xp_milestone"     // xp_total >= Value
	ConditionRegionMaster    BadgeConditionType = "region_master"    // every unit of Region completed
)

// BadgeCondition is the unlock predicate of a badge definition.
type BadgeCondition struct {
	Type   BadgeConditionType `json:"type"`
	Value  int64              `json:"value,omitempty"`  // milestone threshold
	Region string             `json:"region,omitempty"` // region_master only
}

// BadgeDefinition: static catalog entry (seeded from BadgeCatalog at boot).
type BadgeDefinition struct {
	Code        string         `gorm:"primaryKey" json:"code"` // slug of Name
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Rarity      string         `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	Condition   BadgeCondition `gorm:"serializer:json;type:jsonb" json:"condition"`
	XPReward    int64          `json:"xp_reward" gorm:"default:0"`
}

func badge(name, description, rarity string, cond BadgeCondition, xp int64) BadgeDefinition {
	return BadgeDefinition{
		Code:        slug.Make(name),
		Name:        name,
		Description: description,
		Rarity:      rarity,
		Condition:   cond,
		XPReward:    xp,
	}
}

// BadgeCatalog is the built-in badge set.
var BadgeCatalog = []BadgeDefinition{
	badge("First Steps", "Completed your first mission", "common",
		BadgeCondition{Type: ConditionFirstMission}, 20),
	badge("Week Warrior", "Kept a 7 day streak alive", "rare",
		BadgeCondition{Type: ConditionStreakMilestone, Value: 7}, 50),
	badge("Unstoppable", "Kept a 30 day streak alive", "epic",
		BadgeCondition{Type: ConditionStreakMilestone, Value: 30}, 200),
	badge("Rising Star", "Earned 1000 XP", "common",
		BadgeCondition{Type: ConditionXPMilestone, Value: 1000}, 50),
	badge("Scholar", "Earned 10000 XP", "epic",
		BadgeCondition{Type: ConditionXPMilestone, Value: 10000}, 300),
	badge("Master of the Highlands", "Completed every unit in the Highlands region", "legendary",
		BadgeCondition{Type: ConditionRegionMaster, Region: "highlands"}, 500),
}
