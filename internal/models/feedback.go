package models

import (
	"encoding/json"
	"time"
)

// Feedback is one submitted record of field-key to value data.
// RawData holds end-user/API submitted values, AdditionalData holds
// admin-entered values; AdditionalData wins when both carry a key.
type Feedback struct {
	FeedbackID     uint64    `gorm:"primaryKey;autoIncrement"`
	ChannelID      uint64    `gorm:"index;not null"`
	RawData        JSON      `gorm:"not null"`
	AdditionalData JSON
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
	Issues         []Issue   `gorm:"many2many:feedbacks_issues;joinForeignKey:FeedbackID;joinReferences:IssueID"`
}

// Issue is a trackable item feedback records link to.
// FeedbackCount is denormalized and maintained transactionally on link/unlink.
type Issue struct {
	IssueID         uint64 `gorm:"primaryKey;autoIncrement"`
	ProjectID       uint64 `gorm:"not null;uniqueIndex:uq_issues_project_name,priority:1"`
	Name            string `gorm:"size:255;not null;uniqueIndex:uq_issues_project_name,priority:2"`
	Description     string `gorm:"size:255"`
	Status          string `gorm:"size:32;not null;default:'init'"`
	ExternalIssueID string `gorm:"size:255"`
	FeedbackCount   int64  `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Feedbacks       []Feedback                `gorm:"many2many:feedbacks_issues;joinForeignKey:IssueID;joinReferences:FeedbackID"`
	Statistics      []FeedbackIssueStatistics `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`
}

// FeedbackIssueStatistics is a daily rollup of feedback linked to an issue.
type FeedbackIssueStatistics struct {
	StatisticsID  uint64    `gorm:"primaryKey;autoIncrement"`
	IssueID       uint64    `gorm:"not null;uniqueIndex:uq_stats_issue_date,priority:1"`
	Date          time.Time `gorm:"not null;uniqueIndex:uq_stats_issue_date,priority:2"`
	FeedbackCount int64     `gorm:"not null;default:0"`
}

// Issue statuses
const (
	IssueStatusInit       = "init"
	IssueStatusOnReview   = "onReview"
	IssueStatusInProgress = "inProgress"
	IssueStatusResolved   = "resolved"
	IssueStatusPending    = "pending"
)

// TableName overrides the table name for Feedback
func (Feedback) TableName() string {
	return "feedbacks"
}

// TableName overrides the table name for Issue
func (Issue) TableName() string {
	return "issues"
}

// TableName overrides the table name for FeedbackIssueStatistics
func (FeedbackIssueStatistics) TableName() string {
	return "feedback_issue_statistics"
}

// Data merges RawData and AdditionalData, AdditionalData winning on conflict.
func (f Feedback) Data() map[string]interface{} {
	merged := make(map[string]interface{})
	if len(f.RawData.JSON) > 0 {
		_ = json.Unmarshal(f.RawData.JSON, &merged)
	}
	if len(f.AdditionalData.JSON) > 0 {
		var extra map[string]interface{}
		if err := json.Unmarshal(f.AdditionalData.JSON, &extra); err == nil {
			for k, v := range extra {
				merged[k] = v
			}
		}
	}
	return merged
}

// ValidIssueStatus reports whether s is a known issue status.
func ValidIssueStatus(s string) bool {
	switch s {
	case IssueStatusInit, IssueStatusOnReview, IssueStatusInProgress, IssueStatusResolved, IssueStatusPending:
		return true
	}
	return false
}
