package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/types"
)

func TestExportFeedbacksCSV(t *testing.T) {
	db := setupTestDB(t)
	project, channel := feedbackChannel(t, db)

	for _, msg := range []string{"first", "second"} {
		if _, err := CreateFeedback(t.Context(), db, search.Noop{}, channel, map[string]interface{}{
			"message": msg,
		}); err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}
	}

	fullProject, err := GetProject(db, project.ProjectID)
	if err != nil {
		t.Fatalf("Failed to load project: %v", err)
	}

	result, err := ExportFeedbacks(t.Context(), db, search.Noop{}, fullProject, channel, FeedbackQuery{}, ExportCSV)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	if !strings.HasPrefix(result.Filename, "UFB_Test Project_Test Channel_Feedback_") {
		t.Errorf("Unexpected filename %q", result.Filename)
	}
	if !strings.HasSuffix(result.Filename, ".csv") {
		t.Errorf("Expected .csv suffix, got %q", result.Filename)
	}
	if result.ContentType != "text/csv" {
		t.Errorf("Expected text/csv content type, got %q", result.ContentType)
	}

	records, err := csv.NewReader(bytes.NewReader(result.Content)).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d records", len(records))
	}

	header := records[0]
	foundMessage := false
	for _, name := range header {
		if name == "Message" {
			foundMessage = true
		}
	}
	if !foundMessage {
		t.Errorf("Expected Message column in header, got %v", header)
	}
}

func TestExportFeedbacksSkipsInactiveFields(t *testing.T) {
	db := setupTestDB(t)
	project, channel := seedChannel(t, db, []FieldInput{
		{Name: "Message", Key: "message", Format: types.FieldFormatText},
		{Name: "Retired", Key: "retired", Format: types.FieldFormatText, Status: types.FieldStatusInactive},
	})

	if _, err := CreateFeedback(t.Context(), db, search.Noop{}, channel, map[string]interface{}{
		"message": "still here",
	}); err != nil {
		t.Fatalf("Failed to create feedback: %v", err)
	}

	result, err := ExportFeedbacks(t.Context(), db, search.Noop{}, project, channel, FeedbackQuery{}, ExportCSV)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(result.Content)).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	header := records[0]
	if len(header) != 1 || header[0] != "Message" {
		t.Errorf("Expected only active columns in header, got %v", header)
	}
}

func TestExportFeedbacksRejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)
	project, channel := feedbackChannel(t, db)

	_, err := ExportFeedbacks(t.Context(), db, search.Noop{}, project, channel, FeedbackQuery{}, "pdf")
	if err == nil {
		t.Fatal("Expected error for unknown export type, got nil")
	}
}

func TestExportFeedbacksXLSX(t *testing.T) {
	db := setupTestDB(t)
	project, channel := feedbackChannel(t, db)

	if _, err := CreateFeedback(t.Context(), db, search.Noop{}, channel, map[string]interface{}{
		"message": "spreadsheet me",
	}); err != nil {
		t.Fatalf("Failed to create feedback: %v", err)
	}

	result, err := ExportFeedbacks(t.Context(), db, search.Noop{}, project, channel, FeedbackQuery{}, ExportXLSX)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if !strings.HasSuffix(result.Filename, ".xlsx") {
		t.Errorf("Expected .xlsx suffix, got %q", result.Filename)
	}
	// xlsx files are zip archives
	if len(result.Content) < 4 || result.Content[0] != 'P' || result.Content[1] != 'K' {
		t.Error("Expected zip magic at start of xlsx content")
	}
}
