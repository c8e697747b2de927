package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"inkwell/internal/authz"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parsePage reads the 1-indexed ?page= query parameter. Page validation
// belongs to the feed resolver; this only supplies the default.
func parsePage(c *fiber.Ctx) int {
	return c.QueryInt("page", 1)
}

// viewerID returns the authenticated viewer's ID, or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	return middleware.ViewerID(c)
}

// isStaffByUserID checks whether the given account has staff standing. Only
// consulted when the staff override policy is enabled.
func (s *Server) isStaffByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("is_staff").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsStaff, nil
}

// respondServiceError converts a service error into the HTTP response the
// configured denial mode calls for. In redirect mode, denials answer
// 303 See Other: unauthenticated viewers toward login, non-owners back to the
// entity they tried to mutate. Everything else is a plain status + JSON body.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusForError(err)

	if s.authorizer.Policy().DenialMode == authz.DenialRedirect {
		switch status {
		case fiber.StatusUnauthorized:
			c.Set("Location", "/login")
			return c.SendStatus(fiber.StatusSeeOther)
		case fiber.StatusForbidden:
			c.Set("Location", c.Path())
			return c.SendStatus(fiber.StatusSeeOther)
		}
	}

	return models.RespondWithError(c, status, err)
}
