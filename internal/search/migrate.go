package search

import (
	"context"
	"log"

	"github.com/feedlane/feedlane/internal/models"
	"gorm.io/gorm"
)

const migrateBatchSize = 1000

// MigrateAll resynchronizes the search mirror from the relational store.
// It is the only reconciliation path for index writes lost after a crash,
// so it runs once at boot when the index is enabled.
func MigrateAll(ctx context.Context, db *gorm.DB, idx FeedbackIndex) error {
	if !idx.Enabled() {
		return nil
	}

	var channels []models.Channel
	if err := db.WithContext(ctx).Find(&channels).Error; err != nil {
		return err
	}

	for _, channel := range channels {
		if err := idx.CreateIndex(ctx, channel.ChannelID); err != nil {
			// index may already exist; log and keep resyncing documents
			log.Printf("migrate: create index for channel %d: %v", channel.ChannelID, err)
		}

		var lastID uint64
		for {
			var feedbacks []models.Feedback
			err := db.WithContext(ctx).
				Preload("Issues").
				Where("channel_id = ? AND feedback_id > ?", channel.ChannelID, lastID).
				Order("feedback_id ASC").
				Limit(migrateBatchSize).
				Find(&feedbacks).Error
			if err != nil {
				return err
			}
			if len(feedbacks) == 0 {
				break
			}

			for _, f := range feedbacks {
				if err := idx.IndexDoc(ctx, channel.ChannelID, f.FeedbackID, Document(f)); err != nil {
					return err
				}
				lastID = f.FeedbackID
			}

			if len(feedbacks) < migrateBatchSize {
				break
			}
		}

		log.Printf("migrate: channel %d resynced to search index", channel.ChannelID)
	}

	return nil
}

// Document builds the mirror document for one feedback record. Issues must be
// loaded on f; the issueIDs entry is what issue-filtered searches match on.
func Document(f models.Feedback) map[string]interface{} {
	doc := f.Data()
	doc["id"] = f.FeedbackID
	doc["createdAt"] = f.CreatedAt
	doc["updatedAt"] = f.UpdatedAt
	issueIDs := make([]uint64, 0, len(f.Issues))
	for _, issue := range f.Issues {
		issueIDs = append(issueIDs, issue.IssueID)
	}
	doc["issueIDs"] = issueIDs
	return doc
}
