package services

import (
	"strings"
	"testing"

	"github.com/feedlane/feedlane/internal/models"
)

func TestCreateProjectMintsAPIKey(t *testing.T) {
	db := setupTestDB(t)

	project, err := CreateProject(db, ProjectInput{Name: "Mobile App", TimezoneOffset: "+09:00"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	loaded, err := GetProject(db, project.ProjectID)
	if err != nil {
		t.Fatalf("Failed to load project: %v", err)
	}
	if len(loaded.APIKeys) != 1 {
		t.Fatalf("Expected 1 api key, got %d", len(loaded.APIKeys))
	}
	key := loaded.APIKeys[0].Value
	if len(key) != 32 || strings.Contains(key, "-") {
		t.Errorf("Expected 32-char dashless key, got %q", key)
	}
}

func TestCreateProjectRejectsDuplicateName(t *testing.T) {
	db := setupTestDB(t)

	if _, err := CreateProject(db, ProjectInput{Name: "Same"}); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if _, err := CreateProject(db, ProjectInput{Name: "Same"}); err == nil {
		t.Fatal("Expected error for duplicate project name, got nil")
	}
}

func TestCreateProjectRejectsBadTimezone(t *testing.T) {
	db := setupTestDB(t)

	if _, err := CreateProject(db, ProjectInput{Name: "P", TimezoneOffset: "GMT+9"}); err == nil {
		t.Fatal("Expected error for malformed timezone offset, got nil")
	}
}

func TestDeleteProjectDropsEachChannelIndex(t *testing.T) {
	db := setupTestDB(t)
	idx := newFakeIndex()

	project, err := CreateProject(db, ProjectInput{Name: "Multi", TimezoneOffset: "+00:00"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	var channelIDs []uint64
	for _, name := range []string{"web", "ios", "android"} {
		channel, err := CreateChannel(t.Context(), db, idx, project.ProjectID, ChannelInput{Name: name})
		if err != nil {
			t.Fatalf("Failed to create channel: %v", err)
		}
		channelIDs = append(channelIDs, channel.ChannelID)
	}

	if err := DeleteProject(t.Context(), db, idx, project.ProjectID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	if len(idx.deletedIndexes) != len(channelIDs) {
		t.Fatalf("Expected %d index deletions, got %d", len(channelIDs), len(idx.deletedIndexes))
	}
	seen := make(map[uint64]int)
	for _, id := range idx.deletedIndexes {
		seen[id]++
	}
	for _, id := range channelIDs {
		if seen[id] != 1 {
			t.Errorf("Expected exactly one index deletion for channel %d, got %d", id, seen[id])
		}
	}

	var n int64
	if err := db.Model(&models.Channel{}).Where("project_id = ?", project.ProjectID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count channels: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected channels removed, got %d", n)
	}
	if err := db.Model(&models.APIKey{}).Unscoped().Where("project_id = ?", project.ProjectID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count api keys: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected api keys removed, got %d", n)
	}
}

func TestRevokeAPIKeySoftDeletes(t *testing.T) {
	db := setupTestDB(t)

	project, err := CreateProject(db, ProjectInput{Name: "Keys"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	loaded, err := GetProject(db, project.ProjectID)
	if err != nil {
		t.Fatalf("Failed to load project: %v", err)
	}
	keyID := loaded.APIKeys[0].APIKeyID

	if err := RevokeAPIKey(db, project.ProjectID, keyID); err != nil {
		t.Fatalf("Failed to revoke key: %v", err)
	}

	var n int64
	if err := db.Model(&models.APIKey{}).Where("api_key_id = ?", keyID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count keys: %v", err)
	}
	if n != 0 {
		t.Error("Expected revoked key to be hidden by default scope")
	}
	if err := db.Model(&models.APIKey{}).Unscoped().Where("api_key_id = ?", keyID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count keys unscoped: %v", err)
	}
	if n != 1 {
		t.Error("Expected revoked key row to survive as soft deleted")
	}
}
