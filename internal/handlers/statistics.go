package handlers

import (
	"time"

	"github.com/feedlane/feedlane/internal/services"
	"github.com/feedlane/feedlane/internal/types"
	"github.com/feedlane/feedlane/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StatisticsHandler handles statistics routes
type StatisticsHandler struct {
	DB *gorm.DB
}

const statsDateLayout = "2006-01-02"

// GetFeedbackCountByDateByIssue handles GET /api/statistics/feedback-issue
// @Summary Bucketed feedback counts per issue
// @Description Sum daily statistics into day/week/month buckets anchored to the end date
// @Tags Statistics
// @Produce json
// @Param issueIDs query string true "Comma-separated issue IDs"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Param interval query string true "Bucket interval (day, week or month)"
// @Success 200 {array} services.IssueStatsSeries
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /statistics/feedback-issue [get]
func (h *StatisticsHandler) GetFeedbackCountByDateByIssue(c *fiber.Ctx) error {
	issueIDs, err := parseIDList(c, "issueIDs")
	if err != nil {
		return err
	}

	from, err := parseStatsDate(c.Query("from"), "from")
	if err != nil {
		return err
	}
	to, err := parseStatsDate(c.Query("to"), "to")
	if err != nil {
		return err
	}

	interval := services.StatsInterval(c.Query("interval", string(services.IntervalDay)))
	series, err := services.GetCountByDateByIssue(h.DB, issueIDs, from, to, interval)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, series, fiber.StatusOK)
}

func parseStatsDate(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, types.BadRequest("statistics.validation", "%s is required", name)
	}
	t, err := time.Parse(statsDateLayout, raw)
	if err != nil {
		return time.Time{}, types.BadRequest("statistics.validation", "%s must be a %s date", name, statsDateLayout)
	}
	return t, nil
}
