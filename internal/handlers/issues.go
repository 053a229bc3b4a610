package handlers

import (
	"github.com/feedlane/feedlane/internal/services"
	"github.com/feedlane/feedlane/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// IssueHandler handles issue routes within a project
type IssueHandler struct {
	DB *gorm.DB
}

// CreateIssue handles POST /api/projects/:projectId/issues
// @Summary Create an issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param body body services.IssueInput true "Issue"
// @Success 201 {object} models.Issue
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/issues [post]
func (h *IssueHandler) CreateIssue(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	var input services.IssueInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "issue.validation.input")
	}
	if input.Name == "" {
		return utils.ErrorResponse(c, "Issue name is required", fiber.StatusBadRequest, "issue.validation.input")
	}

	issue, err := services.CreateIssue(h.DB, projectID, input)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, issue, fiber.StatusCreated)
}

// GetIssue handles GET /api/projects/:projectId/issues/:issueId
// @Summary Get an issue
// @Tags Issues
// @Produce json
// @Param projectId path int true "Project ID"
// @Param issueId path int true "Issue ID"
// @Success 200 {object} models.Issue
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/issues/{issueId} [get]
func (h *IssueHandler) GetIssue(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}
	issueID, err := parseUintParam(c, "issueId")
	if err != nil {
		return err
	}

	issue, err := services.GetIssue(h.DB, projectID, issueID)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, issue, fiber.StatusOK)
}

// FindIssues handles POST /api/projects/:projectId/issues/search
// @Summary Search issues
// @Description Filter by status and searchText (name LIKE, numeric text also matches id)
// @Tags Issues
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param body body services.IssueQuery true "Query"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/issues/search [post]
func (h *IssueHandler) FindIssues(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}

	var q services.IssueQuery
	if err := c.BodyParser(&q); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "issue.validation.input")
	}

	issues, meta, err := services.FindIssues(h.DB, projectID, q)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"items": issues,
		"meta":  meta,
	}, fiber.StatusOK)
}

// UpdateIssue handles PUT /api/projects/:projectId/issues/:issueId
// @Summary Update an issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param projectId path int true "Project ID"
// @Param issueId path int true "Issue ID"
// @Param body body services.IssueInput true "Issue"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/issues/{issueId} [put]
func (h *IssueHandler) UpdateIssue(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}
	issueID, err := parseUintParam(c, "issueId")
	if err != nil {
		return err
	}

	var input services.IssueInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "issue.validation.input")
	}

	if err := services.UpdateIssue(h.DB, projectID, issueID, input); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}

// DeleteIssue handles DELETE /api/projects/:projectId/issues/:issueId
// @Summary Delete an issue
// @Tags Issues
// @Produce json
// @Param projectId path int true "Project ID"
// @Param issueId path int true "Issue ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{projectId}/issues/{issueId} [delete]
func (h *IssueHandler) DeleteIssue(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return err
	}
	issueID, err := parseUintParam(c, "issueId")
	if err != nil {
		return err
	}

	if err := services.DeleteIssue(h.DB, projectID, issueID); err != nil {
		return err
	}

	return utils.MutationSuccessResponse(c, 1)
}
