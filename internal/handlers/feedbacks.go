package handlers

import (
	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/services"
	"github.com/feedlane/feedlane/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FeedbackHandler handles feedback routes within a channel
type FeedbackHandler struct {
	DB    *gorm.DB
	Index search.FeedbackIndex
}

func (h *FeedbackHandler) loadChannel(c *fiber.Ctx) (channel models.Channel, err error) {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return channel, err
	}
	channelID, err := parseUintParam(c, "channelId")
	if err != nil {
		return channel, err
	}
	return services.GetChannel(h.DB, projectID, channelID)
}

// CreateFeedback handles POST /api/projects/:projectId/channels/:channelId/feedbacks
// @Summary Create feedback
// @Description Validate a submission against the channel schema and persist it
// @Tags Feedbacks
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param body body object true "Feedback payload keyed by field key"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks [post]
func (h *FeedbackHandler) CreateFeedback(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "feedback.validation.input")
	}

	id, err := services.CreateFeedback(c.UserContext(), h.DB, h.Index, channel, payload)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{"id": id}, fiber.StatusCreated)
}

// FindFeedbacks handles POST /api/projects/:projectId/channels/:channelId/feedbacks/search
// @Summary Search feedbacks
// @Description Structured conjunctive filter search with paging and sorting
// @Tags Feedbacks
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param body body services.FeedbackQuery true "Query"
// @Success 200 {object} services.FeedbackPage
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks/search [post]
func (h *FeedbackHandler) FindFeedbacks(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var q services.FeedbackQuery
	if err := c.BodyParser(&q); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "feedback.validation.input")
	}

	page, err := services.FindFeedbacks(c.UserContext(), h.DB, h.Index, channel, q)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// GetFeedback handles GET /api/projects/:projectId/channels/:channelId/feedbacks/:feedbackId
// @Summary Get one feedback
// @Tags Feedbacks
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param feedbackId path int true "Feedback ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks/{feedbackId} [get]
func (h *FeedbackHandler) GetFeedback(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}
	feedbackID, err := parseUintParam(c, "feedbackId")
	if err != nil {
		return err
	}

	feedback, err := services.GetFeedback(h.DB, channel.ChannelID, feedbackID)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, feedback, fiber.StatusOK)
}

// UpdateFeedback handles PUT /api/projects/:projectId/channels/:channelId/feedbacks/:feedbackId
// @Summary Update feedback admin fields
// @Description Merge admin-typed field values into the feedback's additional data
// @Tags Feedbacks
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param feedbackId path int true "Feedback ID"
// @Param body body object true "Admin payload keyed by field key"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks/{feedbackId} [put]
func (h *FeedbackHandler) UpdateFeedback(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}
	feedbackID, err := parseUintParam(c, "feedbackId")
	if err != nil {
		return err
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "feedback.validation.input")
	}

	if err := services.UpdateFeedback(c.UserContext(), h.DB, h.Index, channel, feedbackID, payload); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}

// DeleteFeedbacks handles DELETE /api/projects/:projectId/channels/:channelId/feedbacks
// @Summary Delete feedbacks
// @Tags Feedbacks
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param body body object true "{feedbackIds: []}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks [delete]
func (h *FeedbackHandler) DeleteFeedbacks(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var body struct {
		FeedbackIDs []uint64 `json:"feedbackIds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "feedback.validation.input")
	}
	if len(body.FeedbackIDs) == 0 {
		return utils.ErrorResponse(c, "feedbackIds is required", fiber.StatusBadRequest, "feedback.validation.input")
	}

	if err := services.DeleteFeedbacks(c.UserContext(), h.DB, h.Index, channel, body.FeedbackIDs); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, int64(len(body.FeedbackIDs)))
}

// AddIssue handles POST /api/projects/:projectId/channels/:channelId/feedbacks/:feedbackId/issue/:issueId
// @Summary Link an issue to a feedback
// @Tags Feedbacks
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param feedbackId path int true "Feedback ID"
// @Param issueId path int true "Issue ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks/{feedbackId}/issue/{issueId} [post]
func (h *FeedbackHandler) AddIssue(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}
	feedbackID, err := parseUintParam(c, "feedbackId")
	if err != nil {
		return err
	}
	issueID, err := parseUintParam(c, "issueId")
	if err != nil {
		return err
	}

	if err := services.AddIssueToFeedback(c.UserContext(), h.DB, h.Index, channel, feedbackID, issueID); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}

// RemoveIssue handles DELETE /api/projects/:projectId/channels/:channelId/feedbacks/:feedbackId/issue/:issueId
// @Summary Unlink an issue from a feedback
// @Tags Feedbacks
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param feedbackId path int true "Feedback ID"
// @Param issueId path int true "Issue ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks/{feedbackId}/issue/{issueId} [delete]
func (h *FeedbackHandler) RemoveIssue(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}
	feedbackID, err := parseUintParam(c, "feedbackId")
	if err != nil {
		return err
	}
	issueID, err := parseUintParam(c, "issueId")
	if err != nil {
		return err
	}

	if err := services.RemoveIssueFromFeedback(c.UserContext(), h.DB, h.Index, channel, feedbackID, issueID); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}

// ExportFeedbacks handles POST /api/projects/:projectId/channels/:channelId/feedbacks/export
// @Summary Export feedbacks
// @Description Download the filtered feedbacks of a channel as csv or xlsx
// @Tags Feedbacks
// @Accept json
// @Produce octet-stream
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param type query string false "Export type (csv or xlsx)"
// @Param body body services.FeedbackQuery true "Query"
// @Success 200 {file} file
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/feedbacks/export [post]
func (h *FeedbackHandler) ExportFeedbacks(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	project, err := services.GetProject(h.DB, projectID)
	if err != nil {
		return err
	}
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var q services.FeedbackQuery
	if err := c.BodyParser(&q); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "feedback.validation.input")
	}

	format := services.ExportFormat(c.Query("type", string(services.ExportCSV)))
	result, err := services.ExportFeedbacks(c.UserContext(), h.DB, h.Index, project, channel, q, format)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	return c.Status(fiber.StatusOK).Send(result.Content)
}
