// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"strconv"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer and TokenAudience are validated on every authenticated request.
	TokenIssuer   = "inkwell-api"
	TokenAudience = "inkwell-client"
)

// AuthRequired returns middleware that enforces a valid bearer token and
// stores the viewer ID in c.Locals("viewerID").
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewerID, ok := parseBearerToken(c, secret)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization required"))
		}
		c.Locals("viewerID", viewerID)
		return c.Next()
	}
}

// OptionalAuth returns middleware that extracts the viewer ID when a valid
// bearer token is present but never rejects the request. Anonymous viewers
// proceed with no "viewerID" local set.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if viewerID, ok := parseBearerToken(c, secret); ok {
			c.Locals("viewerID", viewerID)
		}
		return c.Next()
	}
}

// parseBearerToken validates the Authorization header and returns the viewer
// ID from the subject claim.
func parseBearerToken(c *fiber.Ctx, secret string) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != TokenIssuer {
		return 0, false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != TokenAudience {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	viewerID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(viewerID), true
}

// ViewerID returns the authenticated viewer ID from the request, or 0 for an
// anonymous viewer.
func ViewerID(c *fiber.Ctx) uint {
	if vid, ok := c.Locals("viewerID").(uint); ok {
		return vid
	}
	return 0
}
