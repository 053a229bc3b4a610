package services

import (
	"strconv"
	"testing"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
)

func TestCreateIssueRejectsDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	project, _ := seedChannel(t, db, nil)

	if _, err := CreateIssue(db, project.ProjectID, IssueInput{Name: "dup"}); err != nil {
		t.Fatalf("Failed to create issue: %v", err)
	}
	if _, err := CreateIssue(db, project.ProjectID, IssueInput{Name: "dup"}); err == nil {
		t.Fatal("Expected error for duplicate issue name, got nil")
	}
}

func TestCreateIssueRejectsBadStatus(t *testing.T) {
	db := setupTestDB(t)
	project, _ := seedChannel(t, db, nil)

	if _, err := CreateIssue(db, project.ProjectID, IssueInput{Name: "x", Status: "done"}); err == nil {
		t.Fatal("Expected error for invalid status, got nil")
	}
}

func TestFindIssuesSearchText(t *testing.T) {
	db := setupTestDB(t)
	project, _ := seedChannel(t, db, nil)

	var first models.Issue
	for _, name := range []string{"login crash", "login slow", "payment failed"} {
		issue, err := CreateIssue(db, project.ProjectID, IssueInput{Name: name})
		if err != nil {
			t.Fatalf("Failed to create issue: %v", err)
		}
		if first.IssueID == 0 {
			first = issue
		}
	}

	issues, _, err := FindIssues(db, project.ProjectID, IssueQuery{SearchText: "login"})
	if err != nil {
		t.Fatalf("Failed to search issues: %v", err)
	}
	if len(issues) != 2 {
		t.Errorf("Expected 2 matches for name search, got %d", len(issues))
	}

	// numeric searchText also matches the issue id
	issues, _, err = FindIssues(db, project.ProjectID, IssueQuery{
		SearchText: strconv.FormatUint(first.IssueID, 10),
	})
	if err != nil {
		t.Fatalf("Failed to search issues: %v", err)
	}
	found := false
	for _, issue := range issues {
		if issue.IssueID == first.IssueID {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected numeric searchText to match issue id %d", first.IssueID)
	}
}

func TestFindIssuesStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	project, _ := seedChannel(t, db, nil)

	if _, err := CreateIssue(db, project.ProjectID, IssueInput{Name: "a", Status: models.IssueStatusResolved}); err != nil {
		t.Fatalf("Failed to create issue: %v", err)
	}
	if _, err := CreateIssue(db, project.ProjectID, IssueInput{Name: "b"}); err != nil {
		t.Fatalf("Failed to create issue: %v", err)
	}

	issues, _, err := FindIssues(db, project.ProjectID, IssueQuery{Status: models.IssueStatusResolved})
	if err != nil {
		t.Fatalf("Failed to search issues: %v", err)
	}
	if len(issues) != 1 || issues[0].Name != "a" {
		t.Errorf("Expected only the resolved issue, got %v", issues)
	}
}

func TestFindIssuesSortDirectionCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	project, _ := seedChannel(t, db, nil)

	for _, name := range []string{"alpha", "beta"} {
		if _, err := CreateIssue(db, project.ProjectID, IssueInput{Name: name}); err != nil {
			t.Fatalf("Failed to create issue: %v", err)
		}
	}

	issues, _, err := FindIssues(db, project.ProjectID, IssueQuery{
		Sorts: []SortInput{{Key: "name", Direction: "desc"}},
	})
	if err != nil {
		t.Fatalf("Failed to sort with lowercase direction: %v", err)
	}
	if len(issues) != 2 || issues[0].Name != "beta" {
		t.Errorf("Expected beta first with desc sort, got %v", issues)
	}

	if _, _, err := FindIssues(db, project.ProjectID, IssueQuery{
		Sorts: []SortInput{{Key: "name", Direction: "sideways"}},
	}); err == nil {
		t.Error("Expected error for invalid sort direction, got nil")
	}
}

func TestDeleteIssueRemovesLinksAndStatistics(t *testing.T) {
	db := setupTestDB(t)
	project, channel := feedbackChannel(t, db)

	id, err := CreateFeedback(t.Context(), db, search.Noop{}, channel, map[string]interface{}{
		"message":    "m",
		"issueNames": []interface{}{"tracked"},
	})
	if err != nil {
		t.Fatalf("Failed to create feedback: %v", err)
	}

	var issue models.Issue
	if err := db.Where("project_id = ? AND name = ?", project.ProjectID, "tracked").First(&issue).Error; err != nil {
		t.Fatalf("Failed to load issue: %v", err)
	}

	if err := DeleteIssue(db, project.ProjectID, issue.IssueID); err != nil {
		t.Fatalf("Failed to delete issue: %v", err)
	}

	var n int64
	if err := db.Table("feedbacks_issues").Where("issue_id = ?", issue.IssueID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count join rows: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected join rows removed, got %d", n)
	}
	if err := db.Model(&models.FeedbackIssueStatistics{}).Where("issue_id = ?", issue.IssueID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count statistics: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected statistics removed, got %d", n)
	}

	// the feedback itself survives
	if _, err := GetFeedback(db, channel.ChannelID, id); err != nil {
		t.Errorf("Expected feedback to survive issue deletion: %v", err)
	}
}
