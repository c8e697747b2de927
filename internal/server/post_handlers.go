package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	ImageURL    string `json:"image_url"`
	PubDate     string `json:"pub_date"`
	IsPublished *bool  `json:"is_published"`
	CategoryID  *uint  `json:"category_id"`
	LocationID  *uint  `json:"location_id"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Unset is_published defaults to publishing immediately.
	isPublished := true
	if req.IsPublished != nil {
		isPublished = *req.IsPublished
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:    viewerID(c),
		Title:       req.Title,
		Text:        req.Text,
		ImageURL:    req.ImageURL,
		PubDate:     req.PubDate,
		IsPublished: isPublished,
		CategoryID:  req.CategoryID,
		LocationID:  req.LocationID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, viewerID(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	isPublished := true
	if req.IsPublished != nil {
		isPublished = *req.IsPublished
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		ViewerID:    viewerID(c),
		PostID:      id,
		Title:       req.Title,
		Text:        req.Text,
		ImageURL:    req.ImageURL,
		PubDate:     req.PubDate,
		IsPublished: isPublished,
		CategoryID:  req.CategoryID,
		LocationID:  req.LocationID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		ViewerID: viewerID(c),
		PostID:   id,
	}); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
