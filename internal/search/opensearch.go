package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/feedlane/feedlane/internal/config"
	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// OpenSearch mirrors feedback documents into an OpenSearch cluster.
type OpenSearch struct {
	client *opensearch.Client
}

// New selects the index strategy from configuration: a real OpenSearch client
// when cfg.SearchUse is set, otherwise the no-op strategy.
func New(cfg *config.Config) (FeedbackIndex, error) {
	if !cfg.SearchUse {
		return Noop{}, nil
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.SearchAddress},
		Username:  cfg.SearchUsername,
		Password:  cfg.SearchPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &OpenSearch{client: client}, nil
}

func (o *OpenSearch) Enabled() bool { return true }

// indexName derives the per-channel index name from the channel id.
func indexName(channelID uint64) string {
	return strconv.FormatUint(channelID, 10)
}

func (o *OpenSearch) CreateIndex(ctx context.Context, channelID uint64) error {
	req := opensearchapi.IndicesCreateRequest{Index: indexName(channelID)}
	res, err := req.Do(ctx, o.client)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", indexName(channelID), err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to create index %s: %s", indexName(channelID), res.String())
	}
	return nil
}

func (o *OpenSearch) DeleteIndex(ctx context.Context, channelID uint64) error {
	req := opensearchapi.IndicesDeleteRequest{
		Index:             []string{indexName(channelID)},
		IgnoreUnavailable: opensearchapi.BoolPtr(true),
	}
	res, err := req.Do(ctx, o.client)
	if err != nil {
		return fmt.Errorf("failed to delete index %s: %w", indexName(channelID), err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to delete index %s: %s", indexName(channelID), res.String())
	}
	return nil
}

func (o *OpenSearch) IndexDoc(ctx context.Context, channelID, feedbackID uint64, doc map[string]interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := opensearchapi.IndexRequest{
		Index:      indexName(channelID),
		DocumentID: strconv.FormatUint(feedbackID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, o.client)
	if err != nil {
		return fmt.Errorf("failed to index feedback %d: %w", feedbackID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to index feedback %d: %s", feedbackID, res.String())
	}
	return nil
}

func (o *OpenSearch) DeleteDocs(ctx context.Context, channelID uint64, feedbackIDs []uint64) error {
	for _, id := range feedbackIDs {
		req := opensearchapi.DeleteRequest{
			Index:      indexName(channelID),
			DocumentID: strconv.FormatUint(id, 10),
			Refresh:    "true",
		}
		res, err := req.Do(ctx, o.client)
		if err != nil {
			return fmt.Errorf("failed to delete feedback %d from index: %w", id, err)
		}
		res.Body.Close()
		// 404 is acceptable: the document was never mirrored
		if res.IsError() && res.StatusCode != 404 {
			return fmt.Errorf("failed to delete feedback %d from index: %s", id, res.String())
		}
	}
	return nil
}

// searchResponse is the subset of the OpenSearch response we consume.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (o *OpenSearch) Search(ctx context.Context, channelID uint64, body map[string]interface{}, page, limit int) ([]uint64, int64, error) {
	if page < 1 {
		page = 1
	}
	body["from"] = (page - 1) * limit
	body["size"] = limit

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req := opensearchapi.SearchRequest{
		Index: []string{indexName(channelID)},
		Body:  bytes.NewReader(raw),
	}
	res, err := req.Do(ctx, o.client)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uint64, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, parsed.Hits.Total.Value, nil
}
