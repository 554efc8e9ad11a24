package services

import (
	"testing"

	"quiz-progression-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.PlayerProfile{},
		&models.ProfileBadge{},
		&models.MissionProgress{},
		&models.UnitProgress{},
		&models.Challenge{},
		&models.Claimable{},
		&models.InventoryItem{},
		&models.BadgeDefinition{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestProfile(t *testing.T, db *gorm.DB, mutate func(*models.PlayerProfile)) *models.PlayerProfile {
	t.Helper()

	profile := &models.PlayerProfile{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		CurrentHearts:  models.MaxHearts,
	}
	if mutate != nil {
		mutate(profile)
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func strptr(s string) *string { return &s }
