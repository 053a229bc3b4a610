package services

import (
	"testing"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Project{},
		&models.APIKey{},
		&models.Channel{},
		&models.Field{},
		&models.Option{},
		&models.Feedback{},
		&models.Issue{},
		&models.FeedbackIssueStatistics{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// seedChannel creates a project with one channel and the given fields
func seedChannel(t *testing.T, db *gorm.DB, fields []FieldInput) (models.Project, models.Channel) {
	t.Helper()

	project, err := CreateProject(db, ProjectInput{Name: "Test Project", TimezoneOffset: "+00:00"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	channel, err := CreateChannel(t.Context(), db, search.Noop{}, project.ProjectID, ChannelInput{
		Name:   "Test Channel",
		Fields: fields,
	})
	if err != nil {
		t.Fatalf("Failed to create channel: %v", err)
	}

	return project, channel
}
