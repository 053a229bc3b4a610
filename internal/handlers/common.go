package handlers

import (
	"strconv"
	"strings"

	"github.com/feedlane/feedlane/internal/types"
	"github.com/gofiber/fiber/v2"
)

// parseUintParam parses a numeric path parameter.
func parseUintParam(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Params(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.BadRequest("request.param", "%s must be a positive integer, got %q", name, raw)
	}
	return value, nil
}

// parsePagination reads page/limit query parameters with service defaults.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	limit = c.QueryInt("limit", 10)
	return page, limit
}

// parseIDList splits a comma-separated query parameter into ids.
func parseIDList(c *fiber.Ctx, name string) ([]uint64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, types.BadRequest("request.param", "%s must be a comma-separated list of ids", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
