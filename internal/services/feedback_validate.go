package services

import (
	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
)

// fieldsByKey indexes a channel's fields by key.
func fieldsByKey(fields []models.Field) map[string]models.Field {
	byKey := make(map[string]models.Field, len(fields))
	for _, f := range fields {
		byKey[f.Key] = f
	}
	return byKey
}

// ValidateUserPayload checks an end-user/API submitted payload against the
// channel's field schema. Every key must name an active, non-admin field and
// the value must satisfy the field's format predicate.
func ValidateUserPayload(fields []models.Field, payload map[string]interface{}) error {
	byKey := fieldsByKey(fields)

	for key, value := range payload {
		if isReservedFieldKey(key) {
			return types.BadRequest("feedback.validation", "%s is a reserved field key", key)
		}

		field, ok := byKey[key]
		if !ok {
			return types.BadRequest("feedback.validation", "no field with key %s in this channel", key)
		}
		if field.Type == types.FieldTypeAdmin {
			return types.BadRequest("feedback.validation", "%s is an admin field and cannot be set by submission", key)
		}
		if field.Status == types.FieldStatusInactive {
			return types.BadRequest("feedback.validation", "field %s is inactive", key)
		}

		if _, err := types.ParseFieldValue(field.Format, field.ActiveOptionKeys(), value); err != nil {
			return types.BadRequest("feedback.validation", "invalid value for field %s: %v", key, err)
		}
	}

	return nil
}

// ValidateAdminPayload checks an admin-side update payload. Fields must be
// admin-typed and active; for select formats, options that do not exist yet
// are created before validating.
func ValidateAdminPayload(tx *gorm.DB, fields []models.Field, payload map[string]interface{}) error {
	byKey := fieldsByKey(fields)

	for key, value := range payload {
		if isReservedFieldKey(key) {
			return types.BadRequest("feedback.validation", "%s is a reserved field key", key)
		}

		field, ok := byKey[key]
		if !ok {
			return types.BadRequest("feedback.validation", "no field with key %s in this channel", key)
		}
		if field.Type != types.FieldTypeAdmin {
			return types.BadRequest("feedback.validation", "%s is not an admin field", key)
		}
		if field.Status == types.FieldStatusInactive {
			return types.BadRequest("feedback.validation", "field %s is inactive", key)
		}

		if field.Format.IsSelectFormat() {
			updated, err := ensureOptions(tx, field, value)
			if err != nil {
				return err
			}
			field = updated
		}

		if _, err := types.ParseFieldValue(field.Format, field.ActiveOptionKeys(), value); err != nil {
			return types.BadRequest("feedback.validation", "invalid value for field %s: %v", key, err)
		}
	}

	return nil
}

// ensureOptions auto-creates any option named by the value that does not
// exist yet, returning the field with its refreshed option list.
func ensureOptions(tx *gorm.DB, field models.Field, value interface{}) (models.Field, error) {
	var wanted []string
	switch v := value.(type) {
	case string:
		wanted = []string{v}
	case []interface{}:
		for _, el := range v {
			if s, ok := el.(string); ok {
				wanted = append(wanted, s)
			}
		}
	default:
		return field, nil
	}

	known := make(map[string]struct{})
	for _, k := range field.ActiveOptionKeys() {
		known[k] = struct{}{}
	}

	for _, key := range wanted {
		if _, ok := known[key]; ok {
			continue
		}
		option, err := upsertOption(tx, field.FieldID, OptionInput{Name: key, Key: key})
		if err != nil {
			return field, err
		}
		field.Options = append(field.Options, option)
		known[key] = struct{}{}
	}

	return field, nil
}
