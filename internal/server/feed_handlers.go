package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts?page=N, the site-wide feed of posts visible
// to the requesting viewer.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	feed, err := s.feedService.IndexFeed(c.Context(), viewerID(c), parsePage(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// GetCategoryFeed handles GET /api/categories/:slug/posts?page=N.
func (s *Server) GetCategoryFeed(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid category slug"))
	}

	feed, err := s.feedService.GetCategoryFeed(c.Context(), slug, viewerID(c), parsePage(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// GetCategories handles GET /api/categories. Only published categories are
// listed; hidden ones do not exist as far as the API is concerned.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.Context(), true)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GetLocations handles GET /api/locations, the published place references
// available when composing a post.
func (s *Server) GetLocations(c *fiber.Ctx) error {
	locations, err := s.locationRepo.List(c.Context(), true)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"locations": locations})
}
