package services

import (
	"testing"

	"github.com/feedlane/feedlane/internal/types"
)

func TestCreateFieldsAppendsSystemFields(t *testing.T) {
	db := setupTestDB(t)
	_, channel := seedChannel(t, db, []FieldInput{
		{Name: "Message", Key: "message", Format: types.FieldFormatText},
		{Name: "Rating", Key: "rating", Format: types.FieldFormatNumber},
	})

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to load fields: %v", err)
	}

	// user fields plus id, createdAt, updatedAt, issues
	if len(fields) != 6 {
		t.Fatalf("Expected 6 fields, got %d", len(fields))
	}

	byKey := fieldsByKey(fields)
	for _, key := range []string{"id", "createdAt", "updatedAt", "issues"} {
		if _, ok := byKey[key]; !ok {
			t.Errorf("Expected system field %q", key)
		}
	}
	if byKey["issues"].Type != types.FieldTypeAdmin {
		t.Errorf("Expected issues field to be admin-typed, got %s", byKey["issues"].Type)
	}
}

func TestCreateFieldsRejectsReservedKey(t *testing.T) {
	db := setupTestDB(t)
	project, err := CreateProject(db, ProjectInput{Name: "P", TimezoneOffset: "+00:00"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	_, err = CreateChannel(t.Context(), db, newFakeIndex(), project.ProjectID, ChannelInput{
		Name: "C",
		Fields: []FieldInput{
			{Name: "ID Copy", Key: "id", Format: types.FieldFormatText},
		},
	})
	if err == nil {
		t.Fatal("Expected error for reserved key, got nil")
	}
}

func TestCreateFieldsRejectsDuplicateKeys(t *testing.T) {
	db := setupTestDB(t)
	project, err := CreateProject(db, ProjectInput{Name: "P", TimezoneOffset: "+00:00"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	_, err = CreateChannel(t.Context(), db, newFakeIndex(), project.ProjectID, ChannelInput{
		Name: "C",
		Fields: []FieldInput{
			{Name: "One", Key: "value", Format: types.FieldFormatText},
			{Name: "Two", Key: "value", Format: types.FieldFormatNumber},
		},
	})
	if err == nil {
		t.Fatal("Expected error for duplicate keys, got nil")
	}
}

func TestCreateFieldsRequiresOptionsForSelect(t *testing.T) {
	db := setupTestDB(t)
	project, err := CreateProject(db, ProjectInput{Name: "P", TimezoneOffset: "+00:00"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	// select without options
	_, err = CreateChannel(t.Context(), db, newFakeIndex(), project.ProjectID, ChannelInput{
		Name: "C1",
		Fields: []FieldInput{
			{Name: "Kind", Key: "kind", Format: types.FieldFormatSelect},
		},
	})
	if err == nil {
		t.Fatal("Expected error for select field without options, got nil")
	}

	// options on a non-select format
	_, err = CreateChannel(t.Context(), db, newFakeIndex(), project.ProjectID, ChannelInput{
		Name: "C2",
		Fields: []FieldInput{
			{Name: "Message", Key: "message", Format: types.FieldFormatText,
				Options: []OptionInput{{Name: "A", Key: "a"}}},
		},
	})
	if err == nil {
		t.Fatal("Expected error for options on text field, got nil")
	}
}

func TestReplaceFieldsFormatAndKeyImmutable(t *testing.T) {
	db := setupTestDB(t)
	_, channel := seedChannel(t, db, []FieldInput{
		{Name: "Message", Key: "message", Format: types.FieldFormatText},
	})

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to load fields: %v", err)
	}
	byKey := fieldsByKey(fields)
	message := byKey["message"]

	// format change rejected
	err = ReplaceFields(db, channel.ChannelID, []FieldInput{
		{FieldID: &message.FieldID, Name: "Message", Key: "message", Format: types.FieldFormatKeyword},
	})
	if err == nil {
		t.Fatal("Expected error for format change, got nil")
	}

	// key change rejected
	err = ReplaceFields(db, channel.ChannelID, []FieldInput{
		{FieldID: &message.FieldID, Name: "Message", Key: "msg", Format: types.FieldFormatText},
	})
	if err == nil {
		t.Fatal("Expected error for key change, got nil")
	}

	// name and status changes pass
	err = ReplaceFields(db, channel.ChannelID, []FieldInput{
		{FieldID: &message.FieldID, Name: "Body", Key: "message", Format: types.FieldFormatText,
			Status: types.FieldStatusInactive},
	})
	if err != nil {
		t.Fatalf("Expected rename to succeed, got %v", err)
	}

	fields, err = FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to reload fields: %v", err)
	}
	updated := fieldsByKey(fields)["message"]
	if updated.Name != "Body" {
		t.Errorf("Expected renamed field, got %q", updated.Name)
	}
	if updated.Status != types.FieldStatusInactive {
		t.Errorf("Expected inactive status, got %s", updated.Status)
	}
}

func TestReplaceFieldsRejectsSystemFieldUpdate(t *testing.T) {
	db := setupTestDB(t)
	_, channel := seedChannel(t, db, nil)

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to load fields: %v", err)
	}
	idField := fieldsByKey(fields)["id"]

	err = ReplaceFields(db, channel.ChannelID, []FieldInput{
		{FieldID: &idField.FieldID, Name: "Identifier", Key: "id", Format: types.FieldFormatNumber},
	})
	if err == nil {
		t.Fatal("Expected error for system field update, got nil")
	}
}

func TestReplaceFieldsAddsNewField(t *testing.T) {
	db := setupTestDB(t)
	_, channel := seedChannel(t, db, []FieldInput{
		{Name: "Message", Key: "message", Format: types.FieldFormatText},
	})

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to load fields: %v", err)
	}

	inputs := make([]FieldInput, 0, len(fields))
	for _, f := range fields {
		if isReservedFieldKey(f.Key) {
			continue
		}
		id := f.FieldID
		inputs = append(inputs, FieldInput{
			FieldID: &id, Name: f.Name, Key: f.Key, Format: f.Format,
			Type: f.Type, Status: f.Status,
		})
	}
	inputs = append(inputs, FieldInput{
		Name: "Score", Key: "score", Format: types.FieldFormatNumber,
	})

	if err := ReplaceFields(db, channel.ChannelID, inputs); err != nil {
		t.Fatalf("Failed to replace fields: %v", err)
	}

	fields, err = FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to reload fields: %v", err)
	}
	if _, ok := fieldsByKey(fields)["score"]; !ok {
		t.Error("Expected new score field after replace")
	}
}
