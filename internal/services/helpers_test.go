package services_test

import (
	"testing"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with foreign keys on and
// driver errors translated, matching the production gorm configuration.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Link{},
		&models.UserTheme{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// seedUser creates a user row directly.
func seedUser(t *testing.T, db *gorm.DB, subject string, username *string) *models.User {
	user := &models.User{
		AuthSubject: subject,
		Email:       subject + "@example.com",
		Name:        "Test User",
		Username:    username,
		Provider:    "github",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func strPtr(s string) *string { return &s }
