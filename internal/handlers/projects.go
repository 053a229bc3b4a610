package handlers

import (
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/services"
	"github.com/feedlane/feedlane/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProjectHandler handles project and api-key routes
type ProjectHandler struct {
	DB        *gorm.DB
	Index     search.FeedbackIndex
	Scheduler *services.StatsScheduler
}

// CreateProject handles POST /api/projects
// @Summary Create a project
// @Description Create a project and mint its first API key
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body services.ProjectInput true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var input services.ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "project.validation.input")
	}

	project, err := services.CreateProject(h.DB, input)
	if err != nil {
		return err
	}

	if h.Scheduler != nil {
		if err := h.Scheduler.Register(project); err != nil {
			return err
		}
	}

	return utils.SuccessResponse(c, project, fiber.StatusCreated)
}

// GetProject handles GET /api/projects/:projectId
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	project, err := services.GetProject(h.DB, projectID)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, project, fiber.StatusOK)
}

// FindProjects handles GET /api/projects
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} map[string]interface{}
// @Router /projects [get]
func (h *ProjectHandler) FindProjects(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	projects, meta, err := services.FindProjects(h.DB, page, limit)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"items": projects,
		"meta":  meta,
	}, fiber.StatusOK)
}

// UpdateProject handles PUT /api/projects/:projectId
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param body body services.ProjectInput true "Project"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId} [put]
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	var input services.ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "project.validation.input")
	}

	if err := services.UpdateProject(h.DB, projectID, input); err != nil {
		return err
	}

	// timezone may have moved, so the cron entry follows
	if h.Scheduler != nil {
		project, err := services.GetProject(h.DB, projectID)
		if err != nil {
			return err
		}
		if err := h.Scheduler.Register(project); err != nil {
			return err
		}
	}

	return utils.MutationSuccessResponse(c, 1)
}

// DeleteProject handles DELETE /api/projects/:projectId
// @Summary Delete a project
// @Description Delete a project with its channels, feedbacks, issues and search indexes
// @Tags Projects
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId} [delete]
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	if err := services.DeleteProject(c.UserContext(), h.DB, h.Index, projectID); err != nil {
		return err
	}

	if h.Scheduler != nil {
		h.Scheduler.Unregister(projectID)
	}

	return utils.MutationSuccessResponse(c, 1)
}

// CreateAPIKey handles POST /api/projects/:projectId/api-keys
// @Summary Create an API key
// @Tags Projects
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 201 {object} models.APIKey
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/api-keys [post]
func (h *ProjectHandler) CreateAPIKey(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	key, err := services.CreateAPIKey(h.DB, projectID)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, key, fiber.StatusCreated)
}

// RevokeAPIKey handles DELETE /api/projects/:projectId/api-keys/:keyId
// @Summary Revoke an API key
// @Tags Projects
// @Produce json
// @Param projectId path int true "Project ID"
// @Param keyId path int true "API Key ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/api-keys/{keyId} [delete]
func (h *ProjectHandler) RevokeAPIKey(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}
	keyID, err := parseUintParam(c, "keyId")
	if err != nil {
		return err
	}

	if err := services.RevokeAPIKey(h.DB, projectID, keyID); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}
