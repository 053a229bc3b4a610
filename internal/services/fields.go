package services

import (
	"strings"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
)

// FieldInput is the caller-supplied shape for field create/replace.
type FieldInput struct {
	FieldID     *uint64           `json:"id"`
	Name        string            `json:"name"`
	Key         string            `json:"key"`
	Format      types.FieldFormat `json:"format"`
	Type        types.FieldType   `json:"type"`
	Status      types.FieldStatus `json:"status"`
	Description string            `json:"description"`
	Options     []OptionInput     `json:"options"`
}

// OptionInput is the caller-supplied shape for option create/replace.
type OptionInput struct {
	OptionID *uint64 `json:"id"`
	Name     string  `json:"name"`
	Key      string  `json:"key"`
}

// reservedFieldKeys are the system field keys; they double as reserved names.
var reservedFieldKeys = []string{"id", "createdAt", "updatedAt", "issues"}

func isReservedFieldKey(key string) bool {
	for _, r := range reservedFieldKeys {
		if r == key {
			return true
		}
	}
	return false
}

// systemFields returns the four fixed fields appended to every channel schema.
func systemFields(channelID uint64) []models.Field {
	return []models.Field{
		{ChannelID: channelID, Name: "id", Key: "id", Format: types.FieldFormatNumber, Type: types.FieldTypeDefault, Status: types.FieldStatusActive},
		{ChannelID: channelID, Name: "createdAt", Key: "createdAt", Format: types.FieldFormatDate, Type: types.FieldTypeDefault, Status: types.FieldStatusActive},
		{ChannelID: channelID, Name: "updatedAt", Key: "updatedAt", Format: types.FieldFormatDate, Type: types.FieldTypeDefault, Status: types.FieldStatusActive},
		{ChannelID: channelID, Name: "issues", Key: "issues", Format: types.FieldFormatMultiSelect, Type: types.FieldTypeAdmin, Status: types.FieldStatusActive},
	}
}

// validateFieldInput checks one field definition in isolation.
func validateFieldInput(in FieldInput) error {
	if in.Name == "" || in.Key == "" {
		return types.BadRequest("field.validation", "field name and key are required")
	}
	if isReservedFieldKey(in.Name) || isReservedFieldKey(in.Key) {
		return types.BadRequest("field.validation", "%s is a reserved field name/key", in.Key)
	}
	if !in.Format.IsValid() {
		return types.BadRequest("field.validation", "%s is not a valid field format", in.Format)
	}
	if in.Format.IsSelectFormat() != (in.Options != nil) {
		return types.BadRequest("field.validation", "format %s and options presence disagree for field %s", in.Format, in.Key)
	}
	for _, o := range in.Options {
		if strings.HasPrefix(o.Key, deletedKeyPrefix) {
			return types.BadRequest("option.validation", "option key must not start with %q", deletedKeyPrefix)
		}
	}
	return nil
}

// validateFieldBatch checks a batch for duplicate names/keys (case-sensitive).
func validateFieldBatch(inputs []FieldInput) error {
	names := make(map[string]struct{}, len(inputs))
	keys := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if err := validateFieldInput(in); err != nil {
			return err
		}
		if _, ok := names[in.Name]; ok {
			return types.BadRequest("field.validation", "duplicate field name: %s", in.Name)
		}
		if _, ok := keys[in.Key]; ok {
			return types.BadRequest("field.validation", "duplicate field key: %s", in.Key)
		}
		names[in.Name] = struct{}{}
		keys[in.Key] = struct{}{}
	}
	return nil
}

// CreateFields creates a channel's fields in one batch and appends the four
// system fields after the caller-supplied list.
func CreateFields(tx *gorm.DB, channelID uint64, inputs []FieldInput) ([]models.Field, error) {
	if err := validateFieldBatch(inputs); err != nil {
		return nil, err
	}

	fields := make([]models.Field, 0, len(inputs)+4)
	for _, in := range inputs {
		field := models.Field{
			ChannelID:   channelID,
			Name:        in.Name,
			Key:         in.Key,
			Format:      in.Format,
			Type:        in.Type,
			Status:      in.Status,
			Description: in.Description,
		}
		if field.Type == "" {
			field.Type = types.FieldTypeDefault
		}
		if field.Status == "" {
			field.Status = types.FieldStatusActive
		}
		for _, o := range in.Options {
			field.Options = append(field.Options, models.Option{Name: o.Name, Key: o.Key})
		}
		fields = append(fields, field)
	}
	fields = append(fields, systemFields(channelID)...)

	if err := tx.Create(&fields).Error; err != nil {
		return nil, err
	}

	return fields, nil
}

// ReplaceFields applies a full field list to a channel: items with an id update
// the stored field, items without one are created. Stored fields absent from
// the list are left untouched.
func ReplaceFields(db *gorm.DB, channelID uint64, inputs []FieldInput) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Field
		if err := tx.Where("channel_id = ?", channelID).Find(&existing).Error; err != nil {
			return err
		}

		byID := make(map[uint64]models.Field, len(existing))
		names := make(map[string]uint64, len(existing))
		keys := make(map[string]uint64, len(existing))
		for _, f := range existing {
			byID[f.FieldID] = f
			names[f.Name] = f.FieldID
			keys[f.Key] = f.FieldID
		}

		var creates []FieldInput
		for _, in := range inputs {
			if in.FieldID == nil {
				creates = append(creates, in)
				continue
			}

			stored, ok := byID[*in.FieldID]
			if !ok {
				return types.BadRequest("field.validation", "field %d does not belong to this channel", *in.FieldID)
			}
			if isReservedFieldKey(stored.Key) {
				return types.BadRequest("field.validation", "%s is a system field and cannot be updated", stored.Key)
			}
			if in.Format != stored.Format {
				return types.BadRequest("field.validation", "field format cannot be changed (field %s)", stored.Key)
			}
			if in.Key != stored.Key {
				return types.BadRequest("field.validation", "field key cannot be changed (field %s)", stored.Key)
			}
			if in.Name != stored.Name {
				if owner, taken := names[in.Name]; taken && owner != stored.FieldID {
					return types.BadRequest("field.validation", "duplicate field name: %s", in.Name)
				}
			}

			updates := map[string]interface{}{
				"name":        in.Name,
				"description": in.Description,
			}
			if in.Status != "" {
				updates["status"] = in.Status
			}
			if in.Type != "" {
				updates["type"] = in.Type
			}
			if err := tx.Model(&models.Field{}).Where("field_id = ?", stored.FieldID).
				Updates(updates).Error; err != nil {
				return err
			}
			delete(names, stored.Name)
			names[in.Name] = stored.FieldID

			if stored.Format.IsSelectFormat() {
				if err := ReplaceOptions(tx, stored.FieldID, in.Options); err != nil {
					return err
				}
			}
		}

		if err := validateFieldBatch(creates); err != nil {
			return err
		}
		for _, in := range creates {
			if owner, taken := names[in.Name]; taken && owner != 0 {
				return types.BadRequest("field.validation", "duplicate field name: %s", in.Name)
			}
			if owner, taken := keys[in.Key]; taken && owner != 0 {
				return types.BadRequest("field.validation", "duplicate field key: %s", in.Key)
			}

			field := models.Field{
				ChannelID:   channelID,
				Name:        in.Name,
				Key:         in.Key,
				Format:      in.Format,
				Type:        in.Type,
				Status:      in.Status,
				Description: in.Description,
			}
			if field.Type == "" {
				field.Type = types.FieldTypeDefault
			}
			if field.Status == "" {
				field.Status = types.FieldStatusActive
			}
			for _, o := range in.Options {
				field.Options = append(field.Options, models.Option{Name: o.Name, Key: o.Key})
			}
			if err := tx.Create(&field).Error; err != nil {
				return err
			}
			names[in.Name] = field.FieldID
			keys[in.Key] = field.FieldID
		}

		return nil
	})
}

// FindFieldsByChannelID loads a channel's fields with their options.
func FindFieldsByChannelID(db *gorm.DB, channelID uint64) ([]models.Field, error) {
	var fields []models.Field
	err := db.Preload("Options").
		Where("channel_id = ?", channelID).
		Order("field_id ASC").
		Find(&fields).Error
	return fields, err
}
