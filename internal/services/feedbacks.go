package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// PageMeta describes one page of a paged listing.
type PageMeta struct {
	ItemCount    int   `json:"itemCount"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
}

// FeedbackPage is the search result shape returned to clients.
type FeedbackPage struct {
	Items []map[string]interface{} `json:"items"`
	Meta  PageMeta                 `json:"meta"`
}

// CreateFeedback validates the payload against the channel schema, persists it
// and mirrors the document to the search index. An "issueNames" entry links the
// record to issues, creating missing ones by name. Returns the new feedback id.
//
// The relational write commits first; the index write is best-effort and
// reconciled only by the boot-time resync.
func CreateFeedback(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, payload map[string]interface{}) (uint64, error) {
	issueNames, err := popIssueNames(payload)
	if err != nil {
		return 0, err
	}

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		return 0, err
	}
	if err := ValidateUserPayload(fields, payload); err != nil {
		return 0, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	var feedback models.Feedback
	err = db.Transaction(func(tx *gorm.DB) error {
		feedback = models.Feedback{ChannelID: channel.ChannelID, RawData: models.JSON{JSON: raw}}
		if err := tx.Create(&feedback).Error; err != nil {
			return err
		}

		for _, name := range issueNames {
			issue, err := findOrCreateIssue(tx, channel.ProjectID, name)
			if err != nil {
				return err
			}
			if err := linkIssueTx(tx, channel.ProjectID, feedback.FeedbackID, issue.IssueID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return feedback.FeedbackID, reindexFeedback(ctx, db, idx, channel.ChannelID, feedback.FeedbackID)
}

// popIssueNames removes the issueNames entry from the payload before schema
// validation sees it.
func popIssueNames(payload map[string]interface{}) ([]string, error) {
	raw, ok := payload["issueNames"]
	if !ok {
		return nil, nil
	}
	delete(payload, "issueNames")

	arr, ok := raw.([]interface{})
	if !ok {
		return nil, types.BadRequest("feedback.validation", "issueNames must be an array of strings")
	}
	names := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, types.BadRequest("feedback.validation", "issueNames must be an array of strings")
		}
		names = append(names, s)
	}
	return names, nil
}

// FindFeedbacks runs a structured search over the channel's feedback. With the
// search index enabled the query runs there and rows are hydrated from the
// relational store; otherwise the query is translated to SQL predicates.
func FindFeedbacks(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, q FeedbackQuery) (FeedbackPage, error) {
	q.Normalize()

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		return FeedbackPage{}, err
	}

	if idx.Enabled() {
		return findFeedbacksViaIndex(ctx, db, idx, channel, fields, q)
	}
	return findFeedbacksInSQL(db, channel, fields, q)
}

func findFeedbacksViaIndex(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, fields []models.Field, q FeedbackQuery) (FeedbackPage, error) {
	body, err := BuildSearchBody(fields, q)
	if err != nil {
		return FeedbackPage{}, err
	}

	ids, total, err := idx.Search(ctx, channel.ChannelID, body, q.Page, q.Limit)
	if err != nil {
		return FeedbackPage{}, err
	}

	items := make([]map[string]interface{}, 0, len(ids))
	if len(ids) > 0 {
		var rows []models.Feedback
		if err := db.Preload("Issues").
			Where("channel_id = ? AND feedback_id IN ?", channel.ChannelID, ids).
			Find(&rows).Error; err != nil {
			return FeedbackPage{}, err
		}

		byID := make(map[uint64]models.Feedback, len(rows))
		for _, f := range rows {
			byID[f.FeedbackID] = f
		}
		// preserve index rank order
		for _, id := range ids {
			if f, ok := byID[id]; ok {
				items = append(items, renderFeedback(f))
			}
		}
	}

	return FeedbackPage{Items: items, Meta: pageMeta(len(items), total, q)}, nil
}

func findFeedbacksInSQL(db *gorm.DB, channel models.Channel, fields []models.Field, q FeedbackQuery) (FeedbackPage, error) {
	base := db.Model(&models.Feedback{}).Where("channel_id = ?", channel.ChannelID)
	if db.Dialector.Name() == "mysql" {
		base = base.Clauses(hints.UseIndex("idx_feedbacks_created_at"))
	}

	filtered, err := ApplyFeedbackFilters(base, fields, q)
	if err != nil {
		return FeedbackPage{}, err
	}

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return FeedbackPage{}, err
	}

	sorted, err := ApplyFeedbackSorts(filtered, q.Sorts)
	if err != nil {
		return FeedbackPage{}, err
	}

	var rows []models.Feedback
	if err := sorted.Preload("Issues").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error; err != nil {
		return FeedbackPage{}, err
	}

	items := make([]map[string]interface{}, 0, len(rows))
	for _, f := range rows {
		items = append(items, renderFeedback(f))
	}

	return FeedbackPage{Items: items, Meta: pageMeta(len(items), total, q)}, nil
}

func pageMeta(count int, total int64, q FeedbackQuery) PageMeta {
	totalPages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		totalPages++
	}
	return PageMeta{
		ItemCount:    count,
		TotalItems:   total,
		ItemsPerPage: q.Limit,
		TotalPages:   totalPages,
		CurrentPage:  q.Page,
	}
}

// renderFeedback merges the two JSON columns (additionalData wins), then adds
// the system field values.
func renderFeedback(f models.Feedback) map[string]interface{} {
	item := f.Data()
	item["id"] = f.FeedbackID
	item["createdAt"] = f.CreatedAt
	item["updatedAt"] = f.UpdatedAt

	issues := make([]string, 0, len(f.Issues))
	for _, issue := range f.Issues {
		issues = append(issues, issue.Name)
	}
	item["issues"] = issues

	return item
}

// UpdateFeedback merges validated admin values into the feedback's
// additional_data column and refreshes the mirror document.
func UpdateFeedback(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, feedbackID uint64, payload map[string]interface{}) error {
	var feedback models.Feedback
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ? AND feedback_id = ?", channel.ChannelID, feedbackID).
			First(&feedback).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NotFound("feedback.notfound", "feedback %d not found", feedbackID)
			}
			return err
		}

		fields, err := FindFieldsByChannelID(tx, channel.ChannelID)
		if err != nil {
			return err
		}
		if err := ValidateAdminPayload(tx, fields, payload); err != nil {
			return err
		}

		merged := make(map[string]interface{})
		if len(feedback.AdditionalData.JSON) > 0 {
			if err := json.Unmarshal(feedback.AdditionalData.JSON, &merged); err != nil {
				return err
			}
		}
		for k, v := range payload {
			merged[k] = v
		}

		buf, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		feedback.AdditionalData = models.JSON{JSON: buf}
		feedback.UpdatedAt = time.Now().UTC()

		return tx.Model(&models.Feedback{}).
			Where("feedback_id = ?", feedback.FeedbackID).
			Updates(map[string]interface{}{
				"additional_data": feedback.AdditionalData,
				"updated_at":      feedback.UpdatedAt,
			}).Error
	})
	if err != nil {
		return err
	}

	return reindexFeedback(ctx, db, idx, channel.ChannelID, feedback.FeedbackID)
}

// DeleteFeedbacks removes feedback rows by id plus their issue links and
// mirror documents. Each removed link decrements the issue's denormalized
// counter and today's statistics bucket, same as an explicit unlink.
func DeleteFeedbacks(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, channel models.Channel, ids []uint64) error {
	if len(ids) == 0 {
		return types.BadRequest("feedback.validation", "no feedback ids given")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// scope to rows actually in this channel before touching links
		var owned []uint64
		if err := tx.Model(&models.Feedback{}).
			Where("channel_id = ? AND feedback_id IN ?", channel.ChannelID, ids).
			Pluck("feedback_id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}

		var links []struct {
			IssueID uint64
			N       int64
		}
		if err := tx.Raw("SELECT issue_id, COUNT(*) AS n FROM feedbacks_issues WHERE feedback_id IN ? GROUP BY issue_id", owned).
			Scan(&links).Error; err != nil {
			return err
		}
		today := projectLocalDate(tx, channel.ProjectID)
		for _, link := range links {
			if err := tx.Model(&models.Issue{}).Where("issue_id = ?", link.IssueID).
				Update("feedback_count", gorm.Expr("feedback_count - ?", link.N)).Error; err != nil {
				return err
			}
			if err := UpdateFeedbackCount(tx, link.IssueID, today, -link.N); err != nil {
				return err
			}
		}

		if err := tx.Exec("DELETE FROM feedbacks_issues WHERE feedback_id IN ?", owned).Error; err != nil {
			return err
		}
		return tx.Where("feedback_id IN ?", owned).Delete(&models.Feedback{}).Error
	})
	if err != nil {
		return err
	}

	if idx.Enabled() {
		return idx.DeleteDocs(ctx, channel.ChannelID, ids)
	}
	return nil
}

// GetFeedback loads one feedback record as its merged client view.
func GetFeedback(db *gorm.DB, channelID, feedbackID uint64) (map[string]interface{}, error) {
	var feedback models.Feedback
	err := db.Preload("Issues").
		Where("channel_id = ? AND feedback_id = ?", channelID, feedbackID).
		First(&feedback).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, types.NotFound("feedback.notfound", "feedback %d not found", feedbackID)
		}
		return nil, err
	}
	return renderFeedback(feedback), nil
}
