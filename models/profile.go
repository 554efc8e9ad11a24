package models

import (
	"time"

	"gorm.io/gorm"
)

// PlayerProfile tracks gamified progression for each player (denormalized for performance).
// Mutated only by the streak and claim services.
type PlayerProfile struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core progression
	XPTotal     int64 `json:"xp_total" gorm:"default:0"`
	StreakCount int   `json:"streak_count" gorm:"default:0"`

	// Calendar day ("2006-01-02") of the last qualifying activity; nil = never active.
	// Kept as a plain date string so comparisons are calendar-day equality, never elapsed hours.
	LastActiveDate *string `json:"last_active_date,omitempty" gorm:"type:varchar(10)"`

	// Economy / lives
	CurrentHearts int   `json:"current_hearts" gorm:"default:5"` // 0..5
	Credits       int64 `json:"credits" gorm:"default:0"`
	StreakFreezes int   `json:"streak_freezes" gorm:"default:0"` // unused freeze inventory
	IsPremium     bool  `json:"is_premium" gorm:"default:false"`

	UnlockedBadges []ProfileBadge `json:"unlocked_badges,omitempty" gorm:"foreignKey:ProfileID"`

	Timestamps
}

// MaxHearts is the heart cap per profile.
const MaxHearts = 5

// ProfileBadge: one row per unlocked badge (many-to-many with the static catalog).
type ProfileBadge struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ProfileID string    `gorm:"index;not null;uniqueIndex:uniq_profile_badge" json:"profile_id"`
	BadgeCode string    `gorm:"not null;uniqueIndex:uniq_profile_badge" json:"badge_code"`
	AwardedAt time.Time `json:"awarded_at" gorm:"autoCreateTime"`
}

// MissionProgress mirrors per-mission completion for a player.
// Written by the external mission tracker; this core only reads it.
type MissionProgress struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	ProfileID string `gorm:"index;not null;uniqueIndex:uniq_profile_mission" json:"profile_id"`
	MissionID string `gorm:"not null;uniqueIndex:uniq_profile_mission" json:"mission_id"`
	Completed bool   `json:"completed" gorm:"default:false"`

	Timestamps
}

// UnitProgress mirrors per-unit completion within a region (e.g. a course map region).
// Feeds the region_master badge condition.
type UnitProgress struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	ProfileID string `gorm:"index;not null;uniqueIndex:uniq_profile_unit" json:"profile_id"`
	Region    string `gorm:"index;not null" json:"region"`
	UnitID    string `gorm:"not null;uniqueIndex:uniq_profile_unit" json:"unit_id"`
	Completed bool   `json:"completed" gorm:"default:false"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
