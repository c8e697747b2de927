package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profiles/:username?page=N. Owners get every
// post they wrote; everyone else gets the visible slice.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid username"))
	}

	profile, err := s.profileService.GetProfile(c.Context(), username, viewerID(c), parsePage(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetMyProfile handles GET /api/profiles/me?page=N.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), viewerID(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}

	profile, err := s.profileService.GetProfile(c.Context(), user.Username, user.ID, parsePage(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/profiles/me.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.profileService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		ViewerID:  viewerID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(user)
}
