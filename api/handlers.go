package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/storage"
)

// ErrorResponse is the uniform error payload for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	return strings.TrimPrefix(auth, "Bearer ")
}

// currentProfile resolves the request's session token to a profile. A nil
// profile with a nil error never happens; callers branch on the error alone.
func (s *Server) currentProfile(c *fiber.Ctx) (*market.Profile, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, errors.New("missing session token")
	}

	profileID, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}

	return s.storer.GetProfile(c.Context(), profileID)
}

// requireUser answers 401 and returns nil when the request carries no valid
// session.
func (s *Server) requireUser(c *fiber.Ctx) *market.Profile {
	profile, err := s.currentProfile(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "authentication required"})
		return nil
	}
	return profile
}

// requireAdmin answers 401/403 and returns nil when the request is not an
// authenticated admin.
func (s *Server) requireAdmin(c *fiber.Ctx) *market.Profile {
	profile := s.requireUser(c)
	if profile == nil {
		return nil
	}
	if profile.Role != market.RoleAdmin {
		_ = c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "admin privileges required"})
		return nil
	}
	return profile
}

// storeError maps storage errors to HTTP responses.
func storeError(c *fiber.Ctx, err error) error {
	var notFound storage.NotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: notFound.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
}
