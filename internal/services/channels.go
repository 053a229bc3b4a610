package services

import (
	"context"
	"errors"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
)

// ChannelInput is the caller-supplied shape for channel create/update.
type ChannelInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Fields      []FieldInput `json:"fields"`
}

// CreateChannel creates a channel with its field schema in one transaction and
// creates the per-channel search index afterwards.
func CreateChannel(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, projectID uint64, input ChannelInput) (models.Channel, error) {
	if input.Name == "" {
		return models.Channel{}, types.BadRequest("channel.validation", "channel name is required")
	}

	var channel models.Channel
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Channel{}).
			Where("project_id = ? AND name = ?", projectID, input.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.BadRequest("channel.validation", "duplicate channel name: %s", input.Name)
		}

		channel = models.Channel{
			ProjectID:   projectID,
			Name:        input.Name,
			Description: input.Description,
		}
		if err := tx.Create(&channel).Error; err != nil {
			return err
		}

		_, err := CreateFields(tx, channel.ChannelID, input.Fields)
		return err
	})
	if err != nil {
		return models.Channel{}, err
	}

	if idx.Enabled() {
		if err := idx.CreateIndex(ctx, channel.ChannelID); err != nil {
			return channel, err
		}
	}

	return channel, nil
}

// GetChannel loads one channel within a project.
func GetChannel(db *gorm.DB, projectID, channelID uint64) (models.Channel, error) {
	var channel models.Channel
	err := db.Where("project_id = ? AND channel_id = ?", projectID, channelID).
		First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Channel{}, types.NotFound("channel.notfound", "channel %d not found", channelID)
	}
	return channel, err
}

// GetChannelByName loads a channel by its name within a project.
func GetChannelByName(db *gorm.DB, projectID uint64, name string) (models.Channel, error) {
	var channel models.Channel
	err := db.Where("project_id = ? AND name = ?", projectID, name).
		First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Channel{}, types.NotFound("channel.notfound", "channel %s not found", name)
	}
	return channel, err
}

// FindChannels lists a project's channels, paged.
func FindChannels(db *gorm.DB, projectID uint64, page, limit int) ([]models.Channel, PageMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	tx := db.Model(&models.Channel{}).Where("project_id = ?", projectID)

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var channels []models.Channel
	if err := tx.Order("channel_id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&channels).Error; err != nil {
		return nil, PageMeta{}, err
	}

	meta := PageMeta{
		ItemCount:    len(channels),
		TotalItems:   total,
		ItemsPerPage: limit,
		CurrentPage:  page,
		TotalPages:   (total + int64(limit) - 1) / int64(limit),
	}
	return channels, meta, nil
}

// UpdateChannel updates a channel's name/description.
func UpdateChannel(db *gorm.DB, projectID, channelID uint64, input ChannelInput) error {
	channel, err := GetChannel(db, projectID, channelID)
	if err != nil {
		return err
	}

	if input.Name != "" && input.Name != channel.Name {
		var count int64
		if err := db.Model(&models.Channel{}).
			Where("project_id = ? AND name = ? AND channel_id <> ?", projectID, input.Name, channelID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.BadRequest("channel.validation", "duplicate channel name: %s", input.Name)
		}
	}

	updates := map[string]interface{}{"description": input.Description}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	return db.Model(&models.Channel{}).Where("channel_id = ?", channelID).Updates(updates).Error
}

// DeleteChannel removes a channel with its fields and feedback, dropping the
// search index first when enabled.
func DeleteChannel(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, projectID, channelID uint64) error {
	channel, err := GetChannel(db, projectID, channelID)
	if err != nil {
		return err
	}

	if idx.Enabled() {
		if err := idx.DeleteIndex(ctx, channel.ChannelID); err != nil {
			return err
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM feedbacks_issues WHERE feedback_id IN (SELECT feedback_id FROM feedbacks WHERE channel_id = ?)", channelID).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", channelID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM options WHERE field_id IN (SELECT field_id FROM fields WHERE channel_id = ?)", channelID).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", channelID).Delete(&models.Field{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Channel{}, "channel_id = ?", channelID).Error
	})
}
