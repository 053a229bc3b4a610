package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/types"
	"gorm.io/gorm"
)

// TimeRange is a half-open [Gte, Lt) timestamp filter.
type TimeRange struct {
	Gte time.Time `json:"gte"`
	Lt  time.Time `json:"lt"`
}

// SortInput orders results by a column key.
type SortInput struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

// FeedbackQuery is the structured filter/sort request for feedback search.
// All filters are conjunctive.
type FeedbackQuery struct {
	IDs        []uint64               `json:"ids"`
	SearchText string                 `json:"searchText"`
	IssueIDs   []uint64               `json:"issueIDs"`
	CreatedAt  *TimeRange             `json:"createdAt"`
	UpdatedAt  *TimeRange             `json:"updatedAt"`
	Filters    map[string]interface{} `json:"filters"`
	Sorts      []SortInput            `json:"sorts"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}

// Normalize clamps pagination to sane bounds.
func (q *FeedbackQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// jsonColumn picks the JSON column a field's values live in.
func jsonColumn(field models.Field) string {
	if field.Type == types.FieldTypeAdmin {
		return "additional_data"
	}
	return "raw_data"
}

func jsonPath(key string) string {
	return `$."` + key + `"`
}

// jsonTextExpr returns the SQL expression extracting a field value as text.
// MySQL needs JSON_UNQUOTE; SQLite's json_extract already returns bare text.
func jsonTextExpr(dialect, column, key string) (expr string, args []interface{}) {
	if dialect == "mysql" {
		return "JSON_UNQUOTE(JSON_EXTRACT(" + column + ", ?))", []interface{}{jsonPath(key)}
	}
	return "json_extract(" + column + ", ?)", []interface{}{jsonPath(key)}
}

// ApplyFeedbackFilters translates a FeedbackQuery into SQL predicates on the
// feedbacks table. fields is the channel's full field list.
func ApplyFeedbackFilters(db *gorm.DB, fields []models.Field, q FeedbackQuery) (*gorm.DB, error) {
	dialect := db.Dialector.Name()
	tx := db

	if len(q.IDs) > 0 {
		tx = tx.Where("feedback_id IN ?", q.IDs)
	}

	if q.SearchText != "" {
		var clauses []string
		var args []interface{}
		for _, f := range fields {
			switch f.Format {
			case types.FieldFormatKeyword:
				expr, exprArgs := jsonTextExpr(dialect, jsonColumn(f), f.Key)
				clauses = append(clauses, expr+" = ?")
				args = append(args, exprArgs...)
				args = append(args, q.SearchText)
			case types.FieldFormatText:
				expr, exprArgs := jsonTextExpr(dialect, jsonColumn(f), f.Key)
				clauses = append(clauses, expr+" LIKE ?")
				args = append(args, exprArgs...)
				args = append(args, "%"+q.SearchText+"%")
			}
		}
		if len(clauses) > 0 {
			tx = tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
		} else {
			// no searchable field means no match
			tx = tx.Where("1 = 0")
		}
	}

	if len(q.IssueIDs) > 0 {
		tx = tx.Where("feedback_id IN (SELECT feedback_id FROM feedbacks_issues WHERE issue_id IN ?)", q.IssueIDs)
	}

	if q.CreatedAt != nil {
		tx = tx.Where("created_at >= ? AND created_at < ?", q.CreatedAt.Gte, q.CreatedAt.Lt)
	}
	if q.UpdatedAt != nil {
		tx = tx.Where("updated_at >= ? AND updated_at < ?", q.UpdatedAt.Gte, q.UpdatedAt.Lt)
	}

	byKey := fieldsByKey(fields)
	for key, value := range q.Filters {
		field, ok := byKey[key]
		if !ok {
			return nil, types.BadRequest("feedback.search", "no field with key %s in this channel", key)
		}

		column := jsonColumn(field)
		expr, exprArgs := jsonTextExpr(dialect, column, field.Key)

		switch field.Format {
		case types.FieldFormatSelect:
			tx = tx.Where(expr+" = ?", append(exprArgs, value)...)

		case types.FieldFormatMultiSelect:
			if dialect == "mysql" {
				tx = tx.Where("JSON_CONTAINS(JSON_EXTRACT("+column+", ?), JSON_QUOTE(?))",
					jsonPath(field.Key), value)
			} else {
				tx = tx.Where("EXISTS (SELECT 1 FROM json_each(json_extract("+column+", ?)) WHERE json_each.value = ?)",
					jsonPath(field.Key), value)
			}

		case types.FieldFormatText, types.FieldFormatImages:
			tx = tx.Where(expr+" LIKE ?", append(exprArgs, fmt.Sprintf("%%%v%%", value))...)

		case types.FieldFormatDate:
			rng, ok := value.(map[string]interface{})
			if !ok {
				return nil, types.BadRequest("feedback.search", "date filter for field %s must be a range", key)
			}
			if gte, ok := rng["gte"]; ok {
				tx = tx.Where(expr+" >= ?", append(exprArgs, gte)...)
			}
			if lt, ok := rng["lt"]; ok {
				tx = tx.Where(expr+" < ?", append(exprArgs, lt)...)
			}

		default:
			// number, boolean, keyword: plain equality on the extracted value
			tx = tx.Where(expr+" = ?", append(exprArgs, value)...)
		}
	}

	return tx, nil
}

// feedbackSortColumns maps the API sort keys to table columns.
var feedbackSortColumns = map[string]string{
	"id":        "feedback_id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ApplyFeedbackSorts appends ORDER BY clauses; defaults to id DESC.
func ApplyFeedbackSorts(tx *gorm.DB, sorts []SortInput) (*gorm.DB, error) {
	if len(sorts) == 0 {
		return tx.Order("feedback_id DESC"), nil
	}

	for _, s := range sorts {
		column, ok := feedbackSortColumns[s.Key]
		if !ok {
			return nil, types.BadRequest("feedback.search", "%s is not a sortable column", s.Key)
		}
		direction := strings.ToUpper(s.Direction)
		if direction != "ASC" && direction != "DESC" {
			return nil, types.BadRequest("feedback.search", "%s is not a valid sort direction", s.Direction)
		}
		tx = tx.Order(column + " " + direction)
	}

	return tx, nil
}

// BuildSearchBody translates a FeedbackQuery into an OpenSearch query body
// for the channel's mirror index.
func BuildSearchBody(fields []models.Field, q FeedbackQuery) (map[string]interface{}, error) {
	var must []interface{}

	if len(q.IDs) > 0 {
		must = append(must, map[string]interface{}{
			"ids": map[string]interface{}{"values": q.IDs},
		})
	}

	if q.SearchText != "" {
		var should []interface{}
		for _, f := range fields {
			switch f.Format {
			case types.FieldFormatKeyword:
				should = append(should, map[string]interface{}{
					"term": map[string]interface{}{f.Key: q.SearchText},
				})
			case types.FieldFormatText:
				should = append(should, map[string]interface{}{
					"wildcard": map[string]interface{}{f.Key: "*" + q.SearchText + "*"},
				})
			}
		}
		must = append(must, map[string]interface{}{
			"bool": map[string]interface{}{"should": should, "minimum_should_match": 1},
		})
	}

	if len(q.IssueIDs) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"issueIDs": q.IssueIDs},
		})
	}

	if q.CreatedAt != nil {
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{"createdAt": map[string]interface{}{"gte": q.CreatedAt.Gte, "lt": q.CreatedAt.Lt}},
		})
	}
	if q.UpdatedAt != nil {
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{"updatedAt": map[string]interface{}{"gte": q.UpdatedAt.Gte, "lt": q.UpdatedAt.Lt}},
		})
	}

	byKey := fieldsByKey(fields)
	for key, value := range q.Filters {
		field, ok := byKey[key]
		if !ok {
			return nil, types.BadRequest("feedback.search", "no field with key %s in this channel", key)
		}

		switch field.Format {
		case types.FieldFormatSelect, types.FieldFormatMultiSelect, types.FieldFormatKeyword,
			types.FieldFormatNumber, types.FieldFormatBoolean:
			must = append(must, map[string]interface{}{
				"term": map[string]interface{}{key: value},
			})
		case types.FieldFormatText, types.FieldFormatImages:
			must = append(must, map[string]interface{}{
				"wildcard": map[string]interface{}{key: fmt.Sprintf("*%v*", value)},
			})
		case types.FieldFormatDate:
			rng, ok := value.(map[string]interface{})
			if !ok {
				return nil, types.BadRequest("feedback.search", "date filter for field %s must be a range", key)
			}
			must = append(must, map[string]interface{}{
				"range": map[string]interface{}{key: rng},
			})
		}
	}

	var sort []interface{}
	if len(q.Sorts) == 0 {
		sort = append(sort, map[string]interface{}{"id": "desc"})
	}
	for _, s := range q.Sorts {
		direction := strings.ToLower(s.Direction)
		if direction != "asc" && direction != "desc" {
			return nil, types.BadRequest("feedback.search", "%s is not a valid sort direction", s.Direction)
		}
		if _, ok := feedbackSortColumns[s.Key]; !ok {
			return nil, types.BadRequest("feedback.search", "%s is not a sortable column", s.Key)
		}
		sort = append(sort, map[string]interface{}{s.Key: direction})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": sort,
	}
	if len(must) == 0 {
		body["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	return body, nil
}
