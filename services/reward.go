package services

import "math"

// Streak bonus: +10% per streak day, capped at +50% (reached at a 5 day streak).
const (
	streakBonusPerDay = 0.1
	streakBonusCap    = 0.5
)

// CalculateXP returns the XP payout for a base amount given the player's
// current streak. Pure: identical inputs always produce identical outputs.
func CalculateXP(baseXP int64, streakCount int) int64 {
	if streakCount < 0 {
		streakCount = 0
	}
	bonus := float64(streakCount) * streakBonusPerDay
	if bonus > streakBonusCap {
		bonus = streakBonusCap
	}
	return roundXP(float64(baseXP) * (1 + bonus))
}

// ApplyMultiplier scales an XP amount by an optional multiplier
// (nil means 1×), rounded with the same rule as CalculateXP.
func ApplyMultiplier(xp int64, multiplier *float64) int64 {
	if multiplier == nil {
		return xp
	}
	return roundXP(float64(xp) * *multiplier)
}

// roundXP rounds half away from zero.
func roundXP(v float64) int64 {
	return int64(math.Round(v))
}
