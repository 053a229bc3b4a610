package middleware

import (
	"errors"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProjectLocal is the context key holding the project resolved from the API key.
const ProjectLocal = "project"

// APIKeyAuth validates the x-api-key header on external routes and resolves
// the owning project. Revoked keys are soft deleted and never match.
func APIKeyAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Get("x-api-key")
		if value == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "x-api-key header is required",
				Type:    "external.authorization",
			}
		}

		var key models.APIKey
		if err := db.Where("value = ?", value).First(&key).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.CustomError{
					Code:    fiber.StatusUnauthorized,
					Message: "invalid api key",
					Type:    "external.authorization",
				}
			}
			return err
		}

		var project models.Project
		if err := db.First(&project, "project_id = ?", key.ProjectID).Error; err != nil {
			return err
		}

		c.Locals(ProjectLocal, project)
		return c.Next()
	}
}
