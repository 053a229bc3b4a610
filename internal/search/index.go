package search

import (
	"context"
)

// FeedbackIndex is the search mirror strategy. One index per channel, named by
// the channel id. The relational store is the source of truth; index writes are
// best-effort and reconciled by MigrateAll at boot.
type FeedbackIndex interface {
	// Enabled reports whether this index performs real work.
	Enabled() bool

	// CreateIndex creates the per-channel index.
	CreateIndex(ctx context.Context, channelID uint64) error

	// DeleteIndex removes the per-channel index.
	DeleteIndex(ctx context.Context, channelID uint64) error

	// IndexDoc creates or replaces one feedback document.
	IndexDoc(ctx context.Context, channelID, feedbackID uint64, doc map[string]interface{}) error

	// DeleteDocs removes feedback documents by id.
	DeleteDocs(ctx context.Context, channelID uint64, feedbackIDs []uint64) error

	// Search runs a query body against the channel index and returns the
	// matching feedback ids in rank order plus the total hit count.
	Search(ctx context.Context, channelID uint64, body map[string]interface{}, page, limit int) ([]uint64, int64, error)
}

// Noop is the disabled strategy selected when OS_USE is off.
type Noop struct{}

func (Noop) Enabled() bool { return false }

func (Noop) CreateIndex(ctx context.Context, channelID uint64) error { return nil }

func (Noop) DeleteIndex(ctx context.Context, channelID uint64) error { return nil }

func (Noop) IndexDoc(ctx context.Context, channelID, feedbackID uint64, doc map[string]interface{}) error {
	return nil
}

func (Noop) DeleteDocs(ctx context.Context, channelID uint64, feedbackIDs []uint64) error {
	return nil
}

func (Noop) Search(ctx context.Context, channelID uint64, body map[string]interface{}, page, limit int) ([]uint64, int64, error) {
	return nil, 0, nil
}
