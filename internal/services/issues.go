package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/types"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL driver error numbers surfaced as client errors in AddIssue.
const (
	mysqlErrDupEntry        = 1062 // ER_DUP_ENTRY
	mysqlErrNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// IssueInput is the caller-supplied shape for issue create/update.
type IssueInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	ExternalIssueID string `json:"externalIssueId"`
}

// IssueQuery is the filter for issue search.
type IssueQuery struct {
	SearchText string      `json:"searchText"`
	Status     string      `json:"status"`
	Sorts      []SortInput `json:"sorts"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}

// CreateIssue creates an issue within a project.
func CreateIssue(db *gorm.DB, projectID uint64, input IssueInput) (models.Issue, error) {
	if input.Name == "" {
		return models.Issue{}, types.BadRequest("issue.validation", "issue name is required")
	}
	if input.Status != "" && !models.ValidIssueStatus(input.Status) {
		return models.Issue{}, types.BadRequest("issue.validation", "%s is not a valid issue status", input.Status)
	}

	var existing models.Issue
	err := db.Where("project_id = ? AND name = ?", projectID, input.Name).First(&existing).Error
	if err == nil {
		return models.Issue{}, types.BadRequest("issue.validation", "duplicate issue name: %s", input.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Issue{}, err
	}

	issue := models.Issue{
		ProjectID:       projectID,
		Name:            input.Name,
		Description:     input.Description,
		Status:          input.Status,
		ExternalIssueID: input.ExternalIssueID,
	}
	if issue.Status == "" {
		issue.Status = models.IssueStatusInit
	}
	if err := db.Create(&issue).Error; err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

// findOrCreateIssue resolves an issue by name within a project, creating it
// when absent. Used by feedback creation's issueNames linking.
func findOrCreateIssue(tx *gorm.DB, projectID uint64, name string) (models.Issue, error) {
	var issue models.Issue
	err := tx.Where("project_id = ? AND name = ?", projectID, name).First(&issue).Error
	if err == nil {
		return issue, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Issue{}, err
	}

	issue = models.Issue{ProjectID: projectID, Name: name, Status: models.IssueStatusInit}
	if err := tx.Create(&issue).Error; err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

// GetIssue loads one issue by id within a project.
func GetIssue(db *gorm.DB, projectID, issueID uint64) (models.Issue, error) {
	var issue models.Issue
	err := db.Where("project_id = ? AND issue_id = ?", projectID, issueID).First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Issue{}, types.NotFound("issue.notfound", "issue %d not found", issueID)
	}
	return issue, err
}

// FindIssues searches a project's issues. A numeric searchText also matches
// by issue id, so ids pasted into the console search box resolve directly.
func FindIssues(db *gorm.DB, projectID uint64, q IssueQuery) ([]models.Issue, PageMeta, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	tx := db.Model(&models.Issue{}).Where("project_id = ?", projectID)

	if q.SearchText != "" {
		if id, err := strconv.ParseUint(q.SearchText, 10, 64); err == nil {
			tx = tx.Where("issue_id = ? OR name LIKE ?", id, "%"+q.SearchText+"%")
		} else {
			tx = tx.Where("name LIKE ?", "%"+q.SearchText+"%")
		}
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	if len(q.Sorts) == 0 {
		tx = tx.Order("issue_id DESC")
	}
	for _, s := range q.Sorts {
		column, ok := map[string]string{
			"id":            "issue_id",
			"name":          "name",
			"status":        "status",
			"feedbackCount": "feedback_count",
			"createdAt":     "created_at",
			"updatedAt":     "updated_at",
		}[s.Key]
		if !ok {
			return nil, PageMeta{}, types.BadRequest("issue.search", "%s is not a sortable column", s.Key)
		}
		direction := strings.ToUpper(s.Direction)
		if direction != "ASC" && direction != "DESC" {
			return nil, PageMeta{}, types.BadRequest("issue.search", "%s is not a valid sort direction", s.Direction)
		}
		tx = tx.Order(column + " " + direction)
	}

	var issues []models.Issue
	if err := tx.Offset((q.Page - 1) * q.Limit).Limit(q.Limit).Find(&issues).Error; err != nil {
		return nil, PageMeta{}, err
	}

	meta := PageMeta{
		ItemCount:    len(issues),
		TotalItems:   total,
		ItemsPerPage: q.Limit,
		CurrentPage:  q.Page,
		TotalPages:   (total + int64(q.Limit) - 1) / int64(q.Limit),
	}
	return issues, meta, nil
}

// UpdateIssue updates an issue's mutable attributes.
func UpdateIssue(db *gorm.DB, projectID, issueID uint64, input IssueInput) error {
	if input.Status != "" && !models.ValidIssueStatus(input.Status) {
		return types.BadRequest("issue.validation", "%s is not a valid issue status", input.Status)
	}

	issue, err := GetIssue(db, projectID, issueID)
	if err != nil {
		return err
	}

	if input.Name != "" && input.Name != issue.Name {
		var count int64
		if err := db.Model(&models.Issue{}).
			Where("project_id = ? AND name = ? AND issue_id <> ?", projectID, input.Name, issueID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return types.BadRequest("issue.validation", "duplicate issue name: %s", input.Name)
		}
	}

	updates := map[string]interface{}{
		"description":       input.Description,
		"external_issue_id": input.ExternalIssueID,
	}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	return db.Model(&models.Issue{}).Where("issue_id = ?", issueID).Updates(updates).Error
}

// DeleteIssue removes an issue and its feedback links and statistics rows.
func DeleteIssue(db *gorm.DB, projectID, issueID uint64) error {
	issue, err := GetIssue(db, projectID, issueID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM feedbacks_issues WHERE issue_id = ?", issue.IssueID).Error; err != nil {
			return err
		}
		if err := tx.Where("issue_id = ?", issue.IssueID).
			Delete(&models.FeedbackIssueStatistics{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Issue{}, "issue_id = ?", issue.IssueID).Error
	})
}

// linkIssueTx inserts the feedback-issue link, bumps the denormalized counter
// and today's statistics bucket. Runs inside the caller's transaction.
func linkIssueTx(tx *gorm.DB, projectID, feedbackID, issueID uint64) error {
	if err := tx.Exec("INSERT INTO feedbacks_issues (feedback_id, issue_id) VALUES (?, ?)",
		feedbackID, issueID).Error; err != nil {
		return mapDriverError(err)
	}

	if err := tx.Model(&models.Issue{}).Where("issue_id = ?", issueID).
		Update("feedback_count", gorm.Expr("feedback_count + 1")).Error; err != nil {
		return err
	}

	return UpdateFeedbackCount(tx, issueID, projectLocalDate(tx, projectID), 1)
}

// unlinkIssueTx is the inverse of linkIssueTx; a no-op when no link exists.
func unlinkIssueTx(tx *gorm.DB, projectID, feedbackID, issueID uint64) error {
	result := tx.Exec("DELETE FROM feedbacks_issues WHERE feedback_id = ? AND issue_id = ?",
		feedbackID, issueID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}

	if err := tx.Model(&models.Issue{}).Where("issue_id = ?", issueID).
		Update("feedback_count", gorm.Expr("feedback_count - 1")).Error; err != nil {
		return err
	}

	return UpdateFeedbackCount(tx, issueID, projectLocalDate(tx, projectID), -1)
}

// AddIssueToFeedback links an issue to a feedback record and refreshes the
// mirror document.
func AddIssueToFeedback(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, feedbackID, issueID uint64) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var feedback models.Feedback
		if err := tx.Where("channel_id = ? AND feedback_id = ?", channel.ChannelID, feedbackID).
			First(&feedback).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("feedback.notfound", "feedback %d not found", feedbackID)
			}
			return err
		}
		return linkIssueTx(tx, channel.ProjectID, feedbackID, issueID)
	})
	if err != nil {
		return err
	}

	return reindexFeedback(ctx, db, idx, channel.ChannelID, feedbackID)
}

// RemoveIssueFromFeedback unlinks an issue from a feedback record.
func RemoveIssueFromFeedback(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, feedbackID, issueID uint64) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return unlinkIssueTx(tx, channel.ProjectID, feedbackID, issueID)
	})
	if err != nil {
		return err
	}

	return reindexFeedback(ctx, db, idx, channel.ChannelID, feedbackID)
}

func reindexFeedback(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channelID, feedbackID uint64) error {
	if !idx.Enabled() {
		return nil
	}
	var feedback models.Feedback
	if err := db.Preload("Issues").Where("feedback_id = ?", feedbackID).First(&feedback).Error; err != nil {
		return err
	}
	return idx.IndexDoc(ctx, channelID, feedbackID, search.Document(feedback))
}

// mapDriverError translates constraint violations from the MySQL driver into
// client errors; anything else passes through untouched.
func mapDriverError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDupEntry:
			return types.BadRequest("issue.link", "the issue is already linked to this feedback")
		case mysqlErrNoReferencedRow:
			return types.BadRequest("issue.link", "the issue or feedback does not exist")
		}
	}
	return err
}
