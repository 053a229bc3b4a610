package services

import (
	"testing"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
)

func seedSelectField(t *testing.T, db *gorm.DB, optionKeys ...string) models.Field {
	t.Helper()

	inputs := make([]OptionInput, 0, len(optionKeys))
	for _, k := range optionKeys {
		inputs = append(inputs, OptionInput{Name: k, Key: k})
	}
	_, channel := seedChannel(t, db, []FieldInput{
		{Name: "Kind", Key: "kind", Format: types.FieldFormatSelect, Options: inputs},
	})

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to load fields: %v", err)
	}
	return fieldsByKey(fields)["kind"]
}

func loadOptions(t *testing.T, db *gorm.DB, fieldID uint64) []models.Option {
	t.Helper()
	var options []models.Option
	if err := db.Where("field_id = ?", fieldID).Order("option_id").Find(&options).Error; err != nil {
		t.Fatalf("Failed to load options: %v", err)
	}
	return options
}

func TestCreateOptionRejectsTombstonePrefix(t *testing.T) {
	db := setupTestDB(t)
	field := seedSelectField(t, db, "bug")

	_, err := CreateOption(db, field.FieldID, OptionInput{Name: "Gone", Key: "deleted_gone"})
	if err == nil {
		t.Fatal("Expected error for deleted_ key prefix, got nil")
	}
}

func TestCreateOptionRejectsActiveCollision(t *testing.T) {
	db := setupTestDB(t)
	field := seedSelectField(t, db, "bug")

	if _, err := CreateOption(db, field.FieldID, OptionInput{Name: "Other", Key: "bug"}); err == nil {
		t.Error("Expected error for duplicate key, got nil")
	}
	if _, err := CreateOption(db, field.FieldID, OptionInput{Name: "bug", Key: "other"}); err == nil {
		t.Error("Expected error for duplicate name, got nil")
	}
}

func TestReplaceOptionsTombstonesMissing(t *testing.T) {
	db := setupTestDB(t)
	field := seedSelectField(t, db, "bug", "feature")

	options := loadOptions(t, db, field.FieldID)
	if len(options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(options))
	}

	// keep only "bug"
	var bugID uint64
	for _, o := range options {
		if o.Key == "bug" {
			bugID = o.OptionID
		}
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return ReplaceOptions(tx, field.FieldID, []OptionInput{
			{OptionID: &bugID, Name: "bug", Key: "bug"},
		})
	})
	if err != nil {
		t.Fatalf("Failed to replace options: %v", err)
	}

	options = loadOptions(t, db, field.FieldID)
	for _, o := range options {
		switch o.OptionID {
		case bugID:
			if o.DeletedAt != nil {
				t.Error("Expected kept option to stay active")
			}
		default:
			if o.DeletedAt == nil {
				t.Error("Expected missing option to be tombstoned")
			}
			if o.Key != "deleted_feature" {
				t.Errorf("Expected tombstone key deleted_feature, got %q", o.Key)
			}
		}
	}
}

func TestCreateOptionRevivesTombstone(t *testing.T) {
	db := setupTestDB(t)
	field := seedSelectField(t, db, "bug", "feature")

	options := loadOptions(t, db, field.FieldID)
	var bugID, featureID uint64
	for _, o := range options {
		switch o.Key {
		case "bug":
			bugID = o.OptionID
		case "feature":
			featureID = o.OptionID
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReplaceOptions(tx, field.FieldID, []OptionInput{
			{OptionID: &bugID, Name: "bug", Key: "bug"},
		})
	})
	if err != nil {
		t.Fatalf("Failed to tombstone option: %v", err)
	}

	// re-creating the same (key, name) must revive the original row
	revived, err := CreateOption(db, field.FieldID, OptionInput{Name: "feature", Key: "feature"})
	if err != nil {
		t.Fatalf("Failed to revive option: %v", err)
	}
	if revived.OptionID != featureID {
		t.Errorf("Expected revived option id %d, got %d", featureID, revived.OptionID)
	}
	if revived.DeletedAt != nil {
		t.Error("Expected revived option to be active")
	}

	options = loadOptions(t, db, field.FieldID)
	if len(options) != 2 {
		t.Errorf("Expected revival to reuse the row, got %d rows", len(options))
	}
}

func TestReplaceOptionsInsertsNew(t *testing.T) {
	db := setupTestDB(t)
	field := seedSelectField(t, db, "bug")

	options := loadOptions(t, db, field.FieldID)
	bugID := options[0].OptionID

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReplaceOptions(tx, field.FieldID, []OptionInput{
			{OptionID: &bugID, Name: "bug", Key: "bug"},
			{Name: "Question", Key: "question"},
		})
	})
	if err != nil {
		t.Fatalf("Failed to replace options: %v", err)
	}

	options = loadOptions(t, db, field.FieldID)
	if len(options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(options))
	}
}
