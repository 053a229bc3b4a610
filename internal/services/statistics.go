package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsInterval selects the bucket width for statistics queries.
type StatsInterval string

const (
	IntervalDay   StatsInterval = "day"
	IntervalWeek  StatsInterval = "week"
	IntervalMonth StatsInterval = "month"
)

// StatsBucket is one aggregated interval; Date is the bucket's end date.
type StatsBucket struct {
	Date          string `json:"date"`
	FeedbackCount int64  `json:"feedbackCount"`
}

// IssueStatsSeries is the bucketed series for one issue.
type IssueStatsSeries struct {
	IssueID       uint64        `json:"issueId"`
	IssueName     string        `json:"issueName"`
	FeedbackCount int64         `json:"feedbackCount"`
	Statistics    []StatsBucket `json:"statistics"`
}

// parseTimezoneOffset converts "+09:00" / "-05:30" into a duration.
func parseTimezoneOffset(offset string) (time.Duration, error) {
	if len(offset) != 6 || (offset[0] != '+' && offset[0] != '-') || offset[3] != ':' {
		return 0, fmt.Errorf("invalid timezone offset: %q", offset)
	}
	hours, err := strconv.Atoi(offset[1:3])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone offset: %q", offset)
	}
	minutes, err := strconv.Atoi(offset[4:6])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone offset: %q", offset)
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if offset[0] == '-' {
		d = -d
	}
	return d, nil
}

// localDate returns the calendar date of t shifted by the project offset,
// normalized to midnight UTC.
func localDate(t time.Time, offset time.Duration) time.Time {
	shifted := t.UTC().Add(offset)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)
}

// projectLocalDate resolves today's date in the project's configured timezone.
// Falls back to the UTC date when the project or its offset cannot be read.
func projectLocalDate(tx *gorm.DB, projectID uint64) time.Time {
	var project models.Project
	if err := tx.Select("timezone_offset").Where("project_id = ?", projectID).
		First(&project).Error; err != nil {
		return localDate(time.Now(), 0)
	}
	offset, err := parseTimezoneOffset(project.TimezoneOffset)
	if err != nil {
		offset = 0
	}
	return localDate(time.Now(), offset)
}

// UpdateFeedbackCount adjusts the (issue, date) statistics bucket by delta,
// inserting the row when absent. The unique (issue, date) constraint makes
// the upsert race-free.
func UpdateFeedbackCount(tx *gorm.DB, issueID uint64, date time.Time, delta int64) error {
	initial := delta
	if initial < 0 {
		initial = 0
	}
	row := models.FeedbackIssueStatistics{
		IssueID:       issueID,
		Date:          date,
		FeedbackCount: initial,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "issue_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"feedback_count": gorm.Expr("feedback_count + ?", delta),
		}),
	}).Create(&row).Error
}

// CreateFeedbackIssueStatistics recomputes the daily rollups for the last
// `days` project-local days: for each issue, the number of linked feedbacks
// created within each day.
func CreateFeedbackIssueStatistics(db *gorm.DB, projectID uint64, days int) error {
	var project models.Project
	if err := db.Where("project_id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("project.notfound", "project %d not found", projectID)
		}
		return err
	}

	offset, err := parseTimezoneOffset(project.TimezoneOffset)
	if err != nil {
		return err
	}

	var issues []models.Issue
	if err := db.Where("project_id = ?", projectID).Find(&issues).Error; err != nil {
		return err
	}

	today := localDate(time.Now(), offset)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -i)
		// project-local day [date, date+1) maps back to this UTC window
		utcFrom := date.Add(-offset)
		utcTo := utcFrom.Add(24 * time.Hour)

		for _, issue := range issues {
			var count int64
			err := db.Model(&models.Feedback{}).
				Joins("JOIN feedbacks_issues fi ON fi.feedback_id = feedbacks.feedback_id").
				Where("fi.issue_id = ? AND feedbacks.created_at >= ? AND feedbacks.created_at < ?",
					issue.IssueID, utcFrom, utcTo).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count == 0 {
				continue
			}

			row := models.FeedbackIssueStatistics{
				IssueID:       issue.IssueID,
				Date:          date,
				FeedbackCount: count,
			}
			err = db.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "issue_id"}, {Name: "date"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"feedback_count": count,
				}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// GetCountByDateByIssue buckets daily statistics rows into day/week/month
// intervals. Buckets are anchored to the query's `to` date, not to calendar
// boundaries: a row falls into bucket k when it lies k whole intervals before
// `to`, and the bucket is labeled with its end date.
func GetCountByDateByIssue(db *gorm.DB, issueIDs []uint64, from, to time.Time, interval StatsInterval) ([]IssueStatsSeries, error) {
	switch interval {
	case IntervalDay, IntervalWeek, IntervalMonth:
	default:
		return nil, types.BadRequest("statistics.validation", "%s is not a valid interval", interval)
	}
	if len(issueIDs) == 0 {
		return nil, types.BadRequest("statistics.validation", "no issue ids given")
	}

	var issues []models.Issue
	if err := db.Where("issue_id IN ?", issueIDs).Find(&issues).Error; err != nil {
		return nil, err
	}

	var rows []models.FeedbackIssueStatistics
	if err := db.Where("issue_id IN ? AND date >= ? AND date <= ?", issueIDs, from, to).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byIssue := make(map[uint64][]models.FeedbackIssueStatistics, len(issueIDs))
	for _, row := range rows {
		byIssue[row.IssueID] = append(byIssue[row.IssueID], row)
	}

	series := make([]IssueStatsSeries, 0, len(issues))
	for _, issue := range issues {
		s := IssueStatsSeries{
			IssueID:       issue.IssueID,
			IssueName:     issue.Name,
			FeedbackCount: issue.FeedbackCount,
		}

		buckets := make(map[string]int64)
		var order []string
		for _, row := range byIssue[issue.IssueID] {
			end := bucketEnd(row.Date, to, interval)
			label := end.Format("2006-01-02")
			if _, seen := buckets[label]; !seen {
				order = append(order, label)
			}
			buckets[label] += row.FeedbackCount
		}

		for _, label := range order {
			s.Statistics = append(s.Statistics, StatsBucket{Date: label, FeedbackCount: buckets[label]})
		}
		series = append(series, s)
	}

	return series, nil
}

// bucketEnd computes the end date of the interval bucket containing d,
// counting whole intervals backwards from `to`.
func bucketEnd(d, to time.Time, interval StatsInterval) time.Time {
	d = dateOnly(d)
	to = dateOnly(to)

	switch interval {
	case IntervalDay:
		return d
	case IntervalWeek:
		days := int(to.Sub(d).Hours() / 24)
		k := days / 7
		return to.AddDate(0, 0, -7*k)
	default: // month
		k := 0
		for monthsBack(to, k+1).Sub(d) >= 0 {
			k++
		}
		return monthsBack(to, k)
	}
}

// monthsBack steps n calendar months back from t, clamping to the last day of
// the target month (Dec 31 minus one month is Nov 30, not Dec 1).
func monthsBack(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// cronSpec derives the standard 5-field cron expression that fires at the
// project's local midnight, expressed in server (UTC) time.
func cronSpec(offset time.Duration) string {
	// local midnight happens at UTC 00:00 minus the offset
	minutes := int((-offset).Minutes())
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%d %d * * *", minutes%60, minutes/60)
}
