package helpers

import (
	"context"
	"testing"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/services"
	"gorm.io/gorm"
)

// CreateTestProject creates a project and returns it with its first API key.
func CreateTestProject(t *testing.T, db *gorm.DB, name string) (models.Project, string) {
	t.Helper()

	project, err := services.CreateProject(db, services.ProjectInput{
		Name:           name,
		TimezoneOffset: "+00:00",
	})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	var key models.APIKey
	if err := db.Where("project_id = ?", project.ProjectID).First(&key).Error; err != nil {
		t.Fatalf("Failed to load project API key: %v", err)
	}

	return project, key.Value
}

// CreateTestChannel creates a channel with a typical feedback schema:
// a text message, a keyword contact, a number rating and a select category.
func CreateTestChannel(t *testing.T, db *gorm.DB, idx search.FeedbackIndex, projectID uint64, name string) models.Channel {
	t.Helper()

	channel, err := services.CreateChannel(context.Background(), db, idx, projectID, services.ChannelInput{
		Name: name,
		Fields: []services.FieldInput{
			{Name: "Message", Key: "message", Format: "text", Type: "default", Status: "active"},
			{Name: "Contact", Key: "contact", Format: "keyword", Type: "default", Status: "active"},
			{Name: "Rating", Key: "rating", Format: "number", Type: "default", Status: "active"},
			{Name: "Category", Key: "category", Format: "select", Type: "default", Status: "active",
				Options: []services.OptionInput{
					{Name: "Bug", Key: "bug"},
					{Name: "Idea", Key: "idea"},
				}},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create channel: %v", err)
	}

	return channel
}

// CreateTestFeedback submits one feedback record to the channel.
func CreateTestFeedback(t *testing.T, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, payload map[string]interface{}) uint64 {
	t.Helper()

	id, err := services.CreateFeedback(context.Background(), db, idx, channel, payload)
	if err != nil {
		t.Fatalf("Failed to create feedback: %v", err)
	}
	return id
}
