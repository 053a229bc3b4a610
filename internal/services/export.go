package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/types"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportFormat selects the download encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

const exportPageSize = 1000

// ExportResult carries the generated file.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportFeedbacks renders the filtered feedback of a channel into a CSV or
// XLSX download. Columns are the channel's active fields in definition order.
func ExportFeedbacks(ctx context.Context, db *gorm.DB, idx search.FeedbackIndex, project models.Project, channel models.Channel, q FeedbackQuery, format ExportFormat) (ExportResult, error) {
	if format != ExportCSV && format != ExportXLSX {
		return ExportResult{}, types.BadRequest("feedback.export", "%s is not a valid export type", format)
	}

	fields, err := FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		return ExportResult{}, err
	}

	header := make([]string, 0, len(fields))
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Status == types.FieldStatusInactive {
			continue
		}
		header = append(header, f.Name)
		keys = append(keys, f.Key)
	}

	// page through the full result set with the same filter
	var rows [][]string
	q.Page = 1
	q.Limit = exportPageSize
	for {
		page, err := FindFeedbacks(ctx, db, idx, channel, q)
		if err != nil {
			return ExportResult{}, err
		}
		for _, item := range page.Items {
			row := make([]string, len(keys))
			for i, key := range keys {
				row[i] = renderCell(item[key])
			}
			rows = append(rows, row)
		}
		if len(page.Items) < q.Limit {
			break
		}
		q.Page++
	}

	date := time.Now().UTC().Format("2006-01-02")
	filename := fmt.Sprintf("UFB_%s_%s_Feedback_%s.%s", project.Name, channel.Name, date, format)

	switch format {
	case ExportCSV:
		content, err := writeCSV(header, rows)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{Filename: filename, ContentType: "text/csv", Content: content}, nil
	default:
		content, err := writeXLSX(header, rows)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{
			Filename:    filename,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	}
}

func renderCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case []string:
		buf, _ := json.Marshal(val)
		return string(buf)
	case []interface{}, map[string]interface{}:
		buf, _ := json.Marshal(val)
		return string(buf)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
