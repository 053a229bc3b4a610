package handlers

import (
	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/services"
	"github.com/feedlane/feedlane/internal/types"
	"github.com/feedlane/feedlane/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChannelHandler handles channel and field schema routes
type ChannelHandler struct {
	DB    *gorm.DB
	Index search.FeedbackIndex
}

// CreateChannel handles POST /api/projects/:projectId/channels
// @Summary Create a channel
// @Description Create a channel with its field schema and search index
// @Tags Channels
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param body body services.ChannelInput true "Channel"
// @Success 201 {object} models.Channel
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels [post]
func (h *ChannelHandler) CreateChannel(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	var input services.ChannelInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "channel.validation.input")
	}
	if input.Name == "" {
		return utils.ErrorResponse(c, "Channel name is required", fiber.StatusBadRequest, "channel.validation.input")
	}

	channel, err := services.CreateChannel(c.UserContext(), h.DB, h.Index, projectID, input)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, channel, fiber.StatusCreated)
}

// GetChannel handles GET /api/projects/:projectId/channels/:channelId
// @Summary Get a channel
// @Tags Channels
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Success 200 {object} models.Channel
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId} [get]
func (h *ChannelHandler) GetChannel(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, channel, fiber.StatusOK)
}

// FindChannels handles GET /api/projects/:projectId/channels
// @Summary List channels
// @Tags Channels
// @Produce json
// @Param projectId path int true "Project ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} map[string]interface{}
// @Router /projects/{projectId}/channels [get]
func (h *ChannelHandler) FindChannels(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)

	channels, meta, err := services.FindChannels(h.DB, projectID, page, limit)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"items": channels,
		"meta":  meta,
	}, fiber.StatusOK)
}

// UpdateChannel handles PUT /api/projects/:projectId/channels/:channelId
// @Summary Update channel info
// @Tags Channels
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param body body services.ChannelInput true "Channel info"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId} [put]
func (h *ChannelHandler) UpdateChannel(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}
	channelID, err := parseUintParam(c, "channelId")
	if err != nil {
		return err
	}

	var input services.ChannelInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "channel.validation.input")
	}

	if err := services.UpdateChannel(h.DB, projectID, channelID, input); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}

// DeleteChannel handles DELETE /api/projects/:projectId/channels/:channelId
// @Summary Delete a channel
// @Description Delete a channel with its fields, feedbacks and search index
// @Tags Channels
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId} [delete]
func (h *ChannelHandler) DeleteChannel(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}
	channelID, err := parseUintParam(c, "channelId")
	if err != nil {
		return err
	}

	if err := services.DeleteChannel(c.UserContext(), h.DB, h.Index, projectID, channelID); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}

// CreateFields handles POST /api/projects/:projectId/channels/:channelId/fields
// @Summary Create channel fields
// @Description Batch-create fields; system fields are appended automatically
// @Tags Fields
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param body body object true "{fields: []}"
// @Success 201 {array} models.Field
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/fields [post]
func (h *ChannelHandler) CreateFields(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var body struct {
		Fields types.FlexList[services.FieldInput] `json:"fields"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "field.validation.input")
	}

	var created []models.Field
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		fields, err := services.CreateFields(tx, channel.ChannelID, body.Fields.Slice())
		if err != nil {
			return err
		}
		created = fields
		return nil
	})
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, created, fiber.StatusCreated)
}

// ReplaceFields handles PUT /api/projects/:projectId/channels/:channelId/fields
// @Summary Replace channel fields
// @Description Reconcile the channel's field schema; format and key are immutable
// @Tags Fields
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Param body body object true "{fields: []}"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/fields [put]
func (h *ChannelHandler) ReplaceFields(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	var body struct {
		Fields types.FlexList[services.FieldInput] `json:"fields"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "field.validation.input")
	}

	if err := services.ReplaceFields(h.DB, channel.ChannelID, body.Fields.Slice()); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, int64(len(body.Fields)))
}

// FindFields handles GET /api/projects/:projectId/channels/:channelId/fields
// @Summary List channel fields
// @Tags Fields
// @Produce json
// @Param projectId path int true "Project ID"
// @Param channelId path int true "Channel ID"
// @Success 200 {array} models.Field
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/channels/{channelId}/fields [get]
func (h *ChannelHandler) FindFields(c *fiber.Ctx) error {
	channel, err := h.loadChannel(c)
	if err != nil {
		return err
	}

	fields, err := services.FindFieldsByChannelID(h.DB, channel.ChannelID)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fields, fiber.StatusOK)
}

func (h *ChannelHandler) loadChannel(c *fiber.Ctx) (channel models.Channel, err error) {
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
