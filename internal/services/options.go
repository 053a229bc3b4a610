package services

import (
	"strings"
	"time"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
)

// deletedKeyPrefix marks a tombstoned option key. Caller-supplied keys may not
// use the prefix, so the tombstone namespace is unreachable from the outside.
const deletedKeyPrefix = "deleted_"

// CreateOption inserts a new option for a field, reviving a matching tombstone
// instead of inserting a duplicate row.
func CreateOption(db *gorm.DB, fieldID uint64, input OptionInput) (models.Option, error) {
	var created models.Option
	err := db.Transaction(func(tx *gorm.DB) error {
		option, err := upsertOption(tx, fieldID, input)
		if err != nil {
			return err
		}
		created = option
		return nil
	})
	return created, err
}

// upsertOption applies the tombstone protocol for one incoming option:
// revive a matching (deleted_key, name) tombstone, otherwise reject active
// collisions and insert.
func upsertOption(tx *gorm.DB, fieldID uint64, input OptionInput) (models.Option, error) {
	if input.Name == "" || input.Key == "" {
		return models.Option{}, types.BadRequest("option.validation", "option name and key are required")
	}
	if strings.HasPrefix(input.Key, deletedKeyPrefix) {
		return models.Option{}, types.BadRequest("option.validation", "option key must not start with %q", deletedKeyPrefix)
	}

	var options []models.Option
	if err := tx.Where("field_id = ?", fieldID).Find(&options).Error; err != nil {
		return models.Option{}, err
	}

	tombstoneKey := deletedKeyPrefix + input.Key
	for _, o := range options {
		if o.DeletedAt != nil && o.Key == tombstoneKey && o.Name == input.Name {
			if err := tx.Model(&models.Option{}).
				Where("option_id = ?", o.OptionID).
				Updates(map[string]interface{}{"key": input.Key, "deleted_at": nil}).Error; err != nil {
				return models.Option{}, err
			}
			o.Key = input.Key
			o.DeletedAt = nil
			return o, nil
		}
	}

	for _, o := range options {
		if o.DeletedAt != nil {
			continue
		}
		if o.Key == input.Key {
			return models.Option{}, types.BadRequest("option.validation", "duplicate option key: %s", input.Key)
		}
		if o.Name == input.Name {
			return models.Option{}, types.BadRequest("option.validation", "duplicate option name: %s", input.Name)
		}
	}

	option := models.Option{FieldID: fieldID, Name: input.Name, Key: input.Key}
	if err := tx.Create(&option).Error; err != nil {
		return models.Option{}, err
	}
	return option, nil
}

// ReplaceOptions reconciles a field's options with the incoming set:
// active options missing from the set (by id) are tombstoned, every incoming
// option is revived, updated, or inserted.
func ReplaceOptions(tx *gorm.DB, fieldID uint64, inputs []OptionInput) error {
	var existing []models.Option
	if err := tx.Where("field_id = ?", fieldID).Find(&existing).Error; err != nil {
		return err
	}

	incomingIDs := make(map[uint64]struct{}, len(inputs))
	for _, in := range inputs {
		if in.OptionID != nil {
			incomingIDs[*in.OptionID] = struct{}{}
		}
	}

	now := time.Now().UTC()
	for _, o := range existing {
		if o.DeletedAt != nil {
			continue
		}
		if _, keep := incomingIDs[o.OptionID]; keep {
			continue
		}
		if err := tx.Model(&models.Option{}).
			Where("option_id = ?", o.OptionID).
			Updates(map[string]interface{}{"key": deletedKeyPrefix + o.Key, "deleted_at": now}).Error; err != nil {
			return err
		}
	}

	for _, in := range inputs {
		if in.OptionID == nil {
			if _, err := upsertOption(tx, fieldID, in); err != nil {
				return err
			}
			continue
		}

		if in.Key == "" || in.Name == "" {
			return types.BadRequest("option.validation", "option name and key are required")
		}
		if strings.HasPrefix(in.Key, deletedKeyPrefix) {
			return types.BadRequest("option.validation", "option key must not start with %q", deletedKeyPrefix)
		}
		if err := tx.Model(&models.Option{}).
			Where("option_id = ? AND field_id = ?", *in.OptionID, fieldID).
			Updates(map[string]interface{}{"name": in.Name, "key": in.Key}).Error; err != nil {
			return err
		}
	}

	return nil
}
