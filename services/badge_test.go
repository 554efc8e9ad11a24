package services

import (
	"testing"

	"quiz-progression-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func milestoneDefs() []models.BadgeDefinition {
	return []models.BadgeDefinition{
		{Code: "first-steps", Condition: models.BadgeCondition{Type: models.ConditionFirstMission}, XPReward: 20},
		{Code: "week-warrior", Condition: models.BadgeCondition{Type: models.ConditionStreakMilestone, Value: 7}, XPReward: 50},
		{Code: "rising-star", Condition: models.BadgeCondition{Type: models.ConditionXPMilestone, Value: 1000}, XPReward: 50},
		{Code: "master-of-the-highlands", Condition: models.BadgeCondition{Type: models.ConditionRegionMaster, Region: "highlands"}, XPReward: 500},
	}
}

func codes(defs []models.BadgeDefinition) map[string]bool {
	out := map[string]bool{}
	for _, d := range defs {
		out[d.Code] = true
	}
	return out
}

func TestEvaluateBadgesConditions(t *testing.T) {
	tests := []struct {
		name string
		snap ProgressSnapshot
		want []string
	}{
		{
			"nothing met",
			ProgressSnapshot{UnlockedBadges: map[string]bool{}},
			nil,
		},
		{
			"first mission",
			ProgressSnapshot{CompletedMissions: 1, UnlockedBadges: map[string]bool{}},
			[]string{"first-steps"},
		},
		{
			"streak milestone at threshold",
			ProgressSnapshot{StreakCount: 7, UnlockedBadges: map[string]bool{}},
			[]string{"week-warrior"},
		},
		{
			"streak below threshold",
			ProgressSnapshot{StreakCount: 6, UnlockedBadges: map[string]bool{}},
			nil,
		},
		{
			"xp milestone",
			ProgressSnapshot{XPTotal: 1200, UnlockedBadges: map[string]bool{}},
			[]string{"rising-star"},
		},
		{
			"region master only when every unit done",
			ProgressSnapshot{
				UnlockedBadges: map[string]bool{},
				RegionUnits:    map[string]RegionUnits{"highlands": {Total: 4, Completed: 4}},
			},
			[]string{"master-of-the-highlands"},
		},
		{
			"region incomplete",
			ProgressSnapshot{
				UnlockedBadges: map[string]bool{},
				RegionUnits:    map[string]RegionUnits{"highlands": {Total: 4, Completed: 3}},
			},
			nil,
		},
		{
			"region with no units never masters",
			ProgressSnapshot{
				UnlockedBadges: map[string]bool{},
				RegionUnits:    map[string]RegionUnits{"highlands": {Total: 0, Completed: 0}},
			},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codes(EvaluateBadges(tt.snap, milestoneDefs()))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for _, code := range tt.want {
				if !got[code] {
					t.Errorf("missing %q in %v", code, got)
				}
			}
		})
	}
}

func TestEvaluateBadgesNeverReReportsUnlocked(t *testing.T) {
	snap := ProgressSnapshot{
		StreakCount:    30,
		XPTotal:        5000,
		UnlockedBadges: map[string]bool{"week-warrior": true, "rising-star": true},
	}
	got := codes(EvaluateBadges(snap, milestoneDefs()))
	if got["week-warrior"] || got["rising-star"] {
		t.Errorf("already-unlocked badges re-reported: %v", got)
	}
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	svc := NewBadgeService(db)
	if err := svc.SeedBadgeCatalog(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice must be a no-op.
	if err := svc.SeedBadgeCatalog(); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	var count int64
	db.Model(&models.BadgeDefinition{}).Count(&count)
	if count != int64(len(models.BadgeCatalog)) {
		t.Fatalf("catalog rows = %d, want %d", count, len(models.BadgeCatalog))
	}
}

func TestEvaluateForProfileMintsClaimablesOnce(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	svc := NewBadgeService(db)

	profile := createTestProfile(t, db, func(p *models.PlayerProfile) {
		p.StreakCount = 7
	})

	newlyMet, err := svc.EvaluateForProfile(profile.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !codes(newlyMet)["week-warrior"] {
		t.Fatalf("week-warrior not reported: %v", codes(newlyMet))
	}

	// Re-evaluation reports the badge again (still locked) but must not
	// mint a second claimable.
	if _, err := svc.EvaluateForProfile(profile.ID); err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	var minted int64
	db.Model(&models.Claimable{}).
		Where("profile_id = ? AND kind = ? AND source_ref = ?",
			profile.ID, models.ClaimableKindBadge, "week-warrior").
		Count(&minted)
	if minted != 1 {
		t.Errorf("claimables minted = %d, want 1", minted)
	}
}

func TestEvaluateForProfileSkipsUnlocked(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	svc := NewBadgeService(db)

	profile := createTestProfile(t, db, func(p *models.PlayerProfile) {
		p.StreakCount = 7
	})
	if err := db.Create(&models.ProfileBadge{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		BadgeCode: "week-warrior",
	}).Error; err != nil {
		t.Fatalf("unlock badge: %v", err)
	}

	newlyMet, err := svc.EvaluateForProfile(profile.ID)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if codes(newlyMet)["week-warrior"] {
		t.Error("unlocked badge re-reported even though its condition still holds")
	}
}

func TestSnapshotAggregatesProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewBadgeService(db)
	profile := createTestProfile(t, db, func(p *models.PlayerProfile) {
		p.XPTotal = 900
		p.StreakCount = 4
	})

	for i, completed := range []bool{true, true, false} {
		if err := db.Create(&models.MissionProgress{
			ID:        uuid.NewString(),
			ProfileID: profile.ID,
			MissionID: uuid.NewString(),
			Completed: completed,
		}).Error; err != nil {
			t.Fatalf("mission %d: %v", i, err)
		}
	}
	units := []struct {
		region    string
		completed bool
	}{
		{"highlands", true}, {"highlands", true}, {"lowlands", false},
	}
	for i, u := range units {
		if err := db.Create(&models.UnitProgress{
			ID:        uuid.NewString(),
			ProfileID: profile.ID,
			Region:    u.region,
			UnitID:    uuid.NewString(),
			Completed: u.completed,
		}).Error; err != nil {
			t.Fatalf("unit %d: %v", i, err)
		}
	}

	snap, err := svc.Snapshot(profile.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.XPTotal != 900 || snap.StreakCount != 4 {
		t.Errorf("profile fields not copied: %+v", snap)
	}
	if snap.CompletedMissions != 2 {
		t.Errorf("completed missions = %d, want 2", snap.CompletedMissions)
	}
	if got := snap.RegionUnits["highlands"]; got.Total != 2 || got.Completed != 2 {
		t.Errorf("highlands = %+v, want 2/2", got)
	}
	if got := snap.RegionUnits["lowlands"]; got.Total != 1 || got.Completed != 0 {
		t.Errorf("lowlands = %+v, want 0/1", got)
	}
}
