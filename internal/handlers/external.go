package handlers

import (
	"github.com/feedlane/feedlane/internal/middleware"
	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/services"
	"github.com/feedlane/feedlane/internal/types"
	"github.com/feedlane/feedlane/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ExternalHandler handles API-key authenticated mirror routes. The project is
// resolved from the x-api-key header by middleware; channels are addressed by
// name instead of id.
type ExternalHandler struct {
	DB    *gorm.DB
	Index search.FeedbackIndex
}

func (h *ExternalHandler) loadChannel(c *fiber.Ctx) (channel models.Channel, err error) {
	project, ok := c.Locals(middleware.ProjectLocal).(models.Project)
	if !ok {
		return channel, &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "no project resolved for this request",
			Type:    "external.authorization",
		}
	}

	name := c.Params("channelName")
	if name == "" {
		return channel, types.BadRequest("external.validation", "channel name is required")
	}
	return services.GetChannelByName(h.DB, project.ProjectID, name)
}

// CreateFeedback handles POST /external/channels/:channelName/feedbacks
// @Summary Create feedback via API key
// @Description Ingest a feedback submission into the named channel of the key's project
// @Tags External
// @Accept json
// @Produce json
// @Param channelName path string true "Channel name"
// @Param x-api-key header string true "Project API key"
// @Param body body object true "Feedback payload keyed by field key"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /external/channels/{channelName}/feedbacks [post]
func (h *ExternalHandler) CreateFeedback(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "external.validation.input")
	}

	id, err := services.CreateFeedback(c.UserContext(), h.DB, h.Index, channel, payload)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{"id": id}, fiber.StatusCreated)
}

// FindFeedbacks handles POST /external/channels/:channelName/feedbacks/search
// @Summary Search feedbacks via API key
// @Tags External
// @Accept json
// @Produce json
// @Param channelName path string true "Channel name"
// @Param x-api-key header string true "Project API key"
// @Param body body services.FeedbackQuery true "Query"
// @Success 200 {object} services.FeedbackPage
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /external/channels/{channelName}/feedbacks/search [post]
func (h *ExternalHandler) FindFeedbacks(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var q services.FeedbackQuery
	if err := c.BodyParser(&q); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "external.validation.input")
	}

	page, err := services.FindFeedbacks(c.UserContext(), h.DB, h.Index, channel, q)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// GetFeedback handles GET /external/channels/:channelName/feedbacks/:feedbackId
// @Summary Get one feedback via API key
// @Tags External
// @Produce json
// @Param channelName path string true "Channel name"
// @Param feedbackId path int true "Feedback ID"
// @Param x-api-key header string true "Project API key"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /external/channels/{channelName}/feedbacks/{feedbackId} [get]
func (h *ExternalHandler) GetFeedback(c *fiber.Ctx) error {
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
