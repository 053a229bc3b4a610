package services

import (
	"context"
	"errors"
	"strings"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectInput is the caller-supplied shape for project create/update.
type ProjectInput struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	TimezoneOffset string `json:"timezoneOffset"`
}

// CreateProject creates a project and issues its first API key.
func CreateProject(db *gorm.DB, input ProjectInput) (models.Project, error) {
	if input.Name == "" {
		return models.Project{}, types.BadRequest("project.validation", "project name is required")
	}
	if input.TimezoneOffset == "" {
		input.TimezoneOffset = "+00:00"
	}
	if _, err := parseTimezoneOffset(input.TimezoneOffset); err != nil {
		return models.Project{}, types.BadRequest("project.validation", "%s is not a valid timezone offset", input.TimezoneOffset)
	}

	var project models.Project
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("name = ?", input.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.BadRequest("project.validation", "duplicate project name: %s", input.Name)
		}

		project = models.Project{
			Name:           input.Name,
			Description:    input.Description,
			TimezoneOffset: input.TimezoneOffset,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		key := models.APIKey{
			ProjectID: project.ProjectID,
			Value:     NewAPIKeyValue(),
		}
		if err := tx.Create(&key).Error; err != nil {
			return err
		}
		project.APIKeys = []models.APIKey{key}
		return nil
	})

	return project, err
}

// NewAPIKeyValue mints a fresh API key value.
func NewAPIKeyValue() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GetProject loads one project with its API keys.
func GetProject(db *gorm.DB, projectID uint64) (models.Project, error) {
	var project models.Project
	err := db.Preload("APIKeys").Where("project_id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Project{}, types.NotFound("project.notfound", "project %d not found", projectID)
	}
	return project, err
}

// FindProjects lists projects, paged.
func FindProjects(db *gorm.DB, page, limit int) ([]models.Project, PageMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := db.Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var projects []models.Project
	if err := db.Order("project_id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, PageMeta{}, err
	}

	meta := PageMeta{
		ItemCount:    len(projects),
		TotalItems:   total,
		ItemsPerPage: limit,
		CurrentPage:  page,
		TotalPages:   (total + int64(limit) - 1) / int64(limit),
	}
	return projects, meta, nil
}

// UpdateProject updates a project's mutable attributes.
func UpdateProject(db *gorm.DB, projectID uint64, input ProjectInput) error {
	project, err := GetProject(db, projectID)
	if err != nil {
		return err
	}

	if input.TimezoneOffset != "" {
		if _, err := parseTimezoneOffset(input.TimezoneOffset); err != nil {
			return types.BadRequest("project.validation", "%s is not a valid timezone offset", input.TimezoneOffset)
		}
	}
	if input.Name != "" && input.Name != project.Name {
		var count int64
		if err := db.Model(&models.Project{}).
			Where("name = ? AND project_id <> ?", input.Name, projectID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.BadRequest("project.validation", "duplicate project name: %s", input.Name)
		}
	}

	updates := map[string]interface{}{"description": input.Description}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.TimezoneOffset != "" {
		updates["timezone_offset"] = input.TimezoneOffset
	}
	return db.Model(&models.Project{}).Where("project_id = ?", projectID).Updates(updates).Error
}

// DeleteProject removes a project and everything under it. With the search
// index enabled, each channel's index is deleted before the rows go.
func DeleteProject(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, projectID uint64) error {
	if _, err := GetProject(db, projectID); err != nil {
		return err
	}

	var channels []models.Channel
	if err := db.Where("project_id = ?", projectID).Find(&channels).Error; err != nil {
		return err
	}

	for _, channel := range channels {
		if err := DeleteChannel(ctx, db, idx, projectID, channel.ChannelID); err != nil {
			return err
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var issueIDs []uint64
		if err := tx.Model(&models.Issue{}).Where("project_id = ?", projectID).
			Pluck("issue_id", &issueIDs).Error; err != nil {
			return err
		}
		if len(issueIDs) > 0 {
			if err := tx.Where("issue_id IN ?", issueIDs).
				Delete(&models.FeedbackIssueStatistics{}).Error; err != nil {
				return err
			}
			if err := tx.Where("issue_id IN ?", issueIDs).Delete(&models.Issue{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", projectID).Unscoped().Delete(&models.APIKey{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "project_id = ?", projectID).Error
	})
}

// CreateAPIKey mints an additional API key for a project.
func CreateAPIKey(db *gorm.DB, projectID uint64) (models.APIKey, error) {
	if _, err := GetProject(db, projectID); err != nil {
		return models.APIKey{}, err
	}
	key := models.APIKey{ProjectID: projectID, Value: NewAPIKeyValue()}
	err := db.Create(&key).Error
	return key, err
}

// RevokeAPIKey soft-deletes an API key.
func RevokeAPIKey(db *gorm.DB, projectID, keyID uint64) error {
	result := db.Where("project_id = ? AND api_key_id = ?", projectID, keyID).
		Delete(&models.APIKey{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("apikey.notfound", "api key %d not found", keyID)
	}
	return nil
}
